/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package nodes

import (
	"context"
	"testing"

	"github.com/tidwall/gjson"
	"gotest.tools/assert"
)

func TestReadPropertyFromJSON(t *testing.T) {
	node := testNode("read-1", TypeReadPropertyFromJSON, map[string]interface{}{
		HandleJSON:         `{"product":{"price":19.99,"name":"widget"}}`,
		HandlePropertyName: "product.price",
	})
	outputs, err := (&readPropertyExecutor{}).Run(context.Background(), node, testEnv(node))
	assert.NilError(t, err)
	assert.Equal(t, outputs[OutputPropertyValue], 19.99)
}

func TestReadPropertyMissing(t *testing.T) {
	node := testNode("read-1", TypeReadPropertyFromJSON, map[string]interface{}{
		HandleJSON:         `{"a":1}`,
		HandlePropertyName: "b.c",
	})
	_, err := (&readPropertyExecutor{}).Run(context.Background(), node, testEnv(node))
	assert.ErrorContains(t, err, `property "b.c" not found`)
}

func TestReadPropertyInvalidJSON(t *testing.T) {
	node := testNode("read-1", TypeReadPropertyFromJSON, map[string]interface{}{
		HandleJSON:         `{not json`,
		HandlePropertyName: "a",
	})
	_, err := (&readPropertyExecutor{}).Run(context.Background(), node, testEnv(node))
	assert.ErrorContains(t, err, "not valid JSON")
}

func TestWritePropertyToJSON(t *testing.T) {
	node := testNode("write-1", TypeWritePropertyToJSON, map[string]interface{}{
		HandleJSON:          `{"a":1}`,
		HandlePropertyName:  "b.c",
		HandlePropertyValue: "hello",
	})
	outputs, err := (&writePropertyExecutor{}).Run(context.Background(), node, testEnv(node))
	assert.NilError(t, err)
	updated := outputs[OutputUpdatedJSON].(string)
	assert.Equal(t, gjson.Get(updated, "a").Int(), int64(1))
	assert.Equal(t, gjson.Get(updated, "b.c").String(), "hello")
}

func TestJSONTransform(t *testing.T) {
	node := testNode("transform-1", TypeJSONTransform, map[string]interface{}{
		HandleInputJSON: `{"user":{"name":"Ada","age":36},"tags":["x","y"]}`,
		HandleTransformRules: `{
			"name": "user.name",
			"age": {"path": "user.age", "type": "string"},
			"missing": {"path": "user.email", "default": "n/a"},
			"fixed": {"value": 7},
			"first_tag": "tags.0"
		}`,
	})
	outputs, err := (&jsonTransformExecutor{}).Run(context.Background(), node, testEnv(node))
	assert.NilError(t, err)
	transformed := outputs[OutputTransformedJSON].(string)
	assert.Equal(t, gjson.Get(transformed, "name").String(), "Ada")
	assert.Equal(t, gjson.Get(transformed, "age").String(), "36")
	assert.Equal(t, gjson.Get(transformed, "missing").String(), "n/a")
	assert.Equal(t, gjson.Get(transformed, "fixed").Int(), int64(7))
	assert.Equal(t, gjson.Get(transformed, "first_tag").String(), "x")
}

func TestMergeDataOverwrite(t *testing.T) {
	node := testNode("merge-1", TypeMergeData, map[string]interface{}{
		"Data 1": `{"a":1,"b":1}`,
		"Data 2": `{"b":2,"c":3}`,
	})
	outputs, err := (&mergeDataExecutor{}).Run(context.Background(), node, testEnv(node))
	assert.NilError(t, err)
	merged := outputs[OutputMergedData].(string)
	assert.Equal(t, gjson.Get(merged, "a").Int(), int64(1))
	assert.Equal(t, gjson.Get(merged, "b").Int(), int64(2))
	assert.Equal(t, gjson.Get(merged, "c").Int(), int64(3))
}

func TestMergeDataAppendLists(t *testing.T) {
	node := testNode("merge-1", TypeMergeData, map[string]interface{}{
		HandleMergeStrategy: "append",
		"Data 1":            `{"items":[1,2]}`,
		"Data 2":            `{"items":[3]}`,
	})
	outputs, err := (&mergeDataExecutor{}).Run(context.Background(), node, testEnv(node))
	assert.NilError(t, err)
	merged := outputs[OutputMergedData].(string)
	assert.Equal(t, len(gjson.Get(merged, "items").Array()), 3)
}

func TestMergeDataScalarInput(t *testing.T) {
	node := testNode("merge-1", TypeMergeData, map[string]interface{}{
		"Data 1": `{"a":1}`,
		"Data 2": "plain text",
	})
	outputs, err := (&mergeDataExecutor{}).Run(context.Background(), node, testEnv(node))
	assert.NilError(t, err)
	merged := outputs[OutputMergedData].(string)
	assert.Equal(t, gjson.Get(merged, "a").Int(), int64(1))
	assert.Equal(t, gjson.Get(merged, "input_2").String(), "plain text")
}
