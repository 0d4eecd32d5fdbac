/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package nodes

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	v1 "github.com/Memo-Aldu/flow-builder/pkg/apis/v1"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
	jsonutil "github.com/Memo-Aldu/flow-builder/pkg/utils/json"
)

// jsonDocument renders a node input as a JSON document string. String
// inputs pass through, structured inputs are marshaled.
func jsonDocument(node v1.Node, handle string) (string, error) {
	raw, ok := node.Data.Inputs[handle]
	if !ok || raw == nil {
		return "", flowerrors.NewUnresolvedInput(node.Id, handle)
	}
	if s, ok := raw.(string); ok {
		return s, nil
	}
	return jsonutil.MarshalString(raw), nil
}

// readPropertyExecutor reads one property from a JSON document by dot-path.
type readPropertyExecutor struct{}

func (e *readPropertyExecutor) Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error) {
	scratch := env.Phase(node.Id)

	document, err := jsonDocument(node, HandleJSON)
	if err != nil {
		return nil, err
	}
	propertyName, err := stringInput(node, HandlePropertyName)
	if err != nil {
		return nil, err
	}
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Reading property '%s' from JSON.", propertyName))

	if !gjson.Valid(document) {
		return nil, flowerrors.NewExecutorError(node.Data.Type, "input is not valid JSON")
	}
	result := gjson.Get(document, propertyName)
	if !result.Exists() {
		scratch.AddLog(v1.LogError, fmt.Sprintf("Property '%s' not found.", propertyName))
		return nil, flowerrors.NewExecutorError(node.Data.Type,
			fmt.Sprintf("property %q not found in JSON", propertyName))
	}
	return map[string]interface{}{OutputPropertyValue: result.Value()}, nil
}

// writePropertyExecutor sets one property in a JSON document by dot-path,
// creating intermediate objects as needed.
type writePropertyExecutor struct{}

func (e *writePropertyExecutor) Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error) {
	scratch := env.Phase(node.Id)

	document, err := jsonDocument(node, HandleJSON)
	if err != nil {
		return nil, err
	}
	propertyName, err := stringInput(node, HandlePropertyName)
	if err != nil {
		return nil, err
	}
	propertyValue, ok := node.Data.Inputs[HandlePropertyValue]
	if !ok {
		return nil, flowerrors.NewUnresolvedInput(node.Id, HandlePropertyValue)
	}
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Writing property '%s' to JSON.", propertyName))

	if !gjson.Valid(document) {
		return nil, flowerrors.NewExecutorError(node.Data.Type, "input is not valid JSON")
	}
	updated, err := sjson.Set(document, propertyName, propertyValue)
	if err != nil {
		return nil, flowerrors.NewExecutorError(node.Data.Type,
			fmt.Sprintf("failed to write property %q", propertyName)).WithError(err)
	}
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Property '%s' written successfully.", propertyName))
	return map[string]interface{}{OutputUpdatedJSON: updated}, nil
}

// jsonTransformExecutor maps one JSON document into another. Each rule names
// an output field: a string rule is a source path, an object rule carries a
// path with optional type conversion and default, and anything else is a
// literal.
type jsonTransformExecutor struct{}

func (e *jsonTransformExecutor) Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error) {
	scratch := env.Phase(node.Id)

	document, err := jsonDocument(node, HandleInputJSON)
	if err != nil {
		return nil, err
	}
	rulesDocument, err := jsonDocument(node, HandleTransformRules)
	if err != nil {
		return nil, err
	}
	scratch.AddLog(v1.LogInfo, "Starting JSON transformation.")

	if !gjson.Valid(document) || !gjson.Valid(rulesDocument) {
		return nil, flowerrors.NewExecutorError(node.Data.Type, "input is not valid JSON")
	}
	var rules map[string]interface{}
	if err := jsonutil.Unmarshal([]byte(rulesDocument), &rules); err != nil {
		return nil, flowerrors.NewExecutorError(node.Data.Type, "transform rules must be a JSON object").WithError(err)
	}

	result := map[string]interface{}{}
	for outputKey, rule := range rules {
		result[outputKey] = applyRule(document, rule)
	}
	scratch.AddLog(v1.LogInfo, "JSON transformation completed successfully.")
	return map[string]interface{}{OutputTransformedJSON: jsonutil.MarshalString(result)}, nil
}

func applyRule(document string, rule interface{}) interface{} {
	switch r := rule.(type) {
	case string:
		if match := gjson.Get(document, r); match.Exists() {
			return match.Value()
		}
		return nil
	case map[string]interface{}:
		if path, ok := r["path"].(string); ok {
			match := gjson.Get(document, path)
			if !match.Exists() {
				return r["default"]
			}
			value := match.Value()
			if targetType, ok := r["type"].(string); ok {
				value = convertType(value, targetType)
			}
			return value
		}
		if value, ok := r["value"]; ok {
			return value
		}
		return r
	default:
		return rule
	}
}

func convertType(value interface{}, targetType string) interface{} {
	switch targetType {
	case "string":
		return coerceString(value)
	case "number":
		if f, err := strconv.ParseFloat(coerceString(value), 64); err == nil {
			return f
		}
		return value
	case "boolean":
		switch v := value.(type) {
		case bool:
			return v
		case float64:
			return v != 0
		case string:
			return v != ""
		default:
			return value != nil
		}
	case "array":
		if _, ok := value.([]interface{}); ok {
			return value
		}
		return []interface{}{value}
	default:
		return value
	}
}

// mergeDataExecutor combines every "Data N" input into one JSON object.
// Object inputs merge key by key per the strategy; scalar inputs land under
// synthetic input_N keys.
type mergeDataExecutor struct{}

func (e *mergeDataExecutor) Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error) {
	scratch := env.Phase(node.Id)

	strategy := optionalString(node, HandleMergeStrategy, "overwrite")
	scratch.AddLog(v1.LogInfo, "Starting data merge operation.")

	var dataHandles []string
	for handle, value := range node.Data.Inputs {
		if strings.HasPrefix(handle, "Data ") && value != nil {
			dataHandles = append(dataHandles, handle)
		}
	}
	sort.Strings(dataHandles)
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Found %d data inputs to merge.", len(dataHandles)))

	merged := map[string]interface{}{}
	for i, handle := range dataHandles {
		value := node.Data.Inputs[handle]
		if s, ok := value.(string); ok {
			var parsed interface{}
			if err := jsonutil.Unmarshal([]byte(s), &parsed); err == nil {
				value = parsed
			}
		}
		if object, ok := value.(map[string]interface{}); ok {
			mergeObjects(merged, object, strategy)
		} else {
			merged[fmt.Sprintf("input_%d", i+1)] = value
		}
	}
	scratch.AddLog(v1.LogInfo, "Data merge completed successfully.")
	return map[string]interface{}{OutputMergedData: jsonutil.MarshalString(merged)}, nil
}

// mergeObjects folds source into target. The append strategy concatenates
// lists sharing a key; everything else overwrites.
func mergeObjects(target, source map[string]interface{}, strategy string) {
	for key, value := range source {
		if strategy == "append" {
			existing, haveList := target[key].([]interface{})
			incoming, isList := value.([]interface{})
			if haveList && isList {
				target[key] = append(existing, incoming...)
				continue
			}
		}
		target[key] = value
	}
}
