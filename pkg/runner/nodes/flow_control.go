/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package nodes

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	v1 "github.com/Memo-Aldu/flow-builder/pkg/apis/v1"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

// branchExecutor evaluates one comparison and emits "execute" on exactly one
// of True Path / False Path; the other is null. Downstream nodes are not
// pruned, the markers simply travel through edges like any other output.
type branchExecutor struct{}

func (e *branchExecutor) Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error) {
	scratch := env.Phase(node.Id)

	leftRaw, ok := node.Data.Inputs[HandleLeftValue]
	if !ok {
		return nil, flowerrors.NewUnresolvedInput(node.Id, HandleLeftValue)
	}
	rightRaw, ok := node.Data.Inputs[HandleRightValue]
	if !ok {
		return nil, flowerrors.NewUnresolvedInput(node.Id, HandleRightValue)
	}
	operator, err := stringInput(node, HandleOperator)
	if err != nil {
		return nil, err
	}

	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Evaluating condition: '%v' %s '%v'", leftRaw, operator, rightRaw))

	result, err := evaluateCondition(leftRaw, operator, rightRaw)
	if err != nil {
		scratch.AddLog(v1.LogError, fmt.Sprintf("Error evaluating condition: %v", err))
		return nil, flowerrors.NewExecutorError(node.Data.Type, "error evaluating condition").WithError(err)
	}
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Condition result: %t", result))

	outputs := map[string]interface{}{
		OutputTruePath:  nil,
		OutputFalsePath: nil,
		OutputResult:    result,
		OutputData:      leftRaw,
	}
	if result {
		outputs[OutputTruePath] = "execute"
	} else {
		outputs[OutputFalsePath] = "execute"
	}
	return outputs, nil
}

// convertScalar normalizes comparison operands for equality and ordering:
// numeric strings become numbers, all numbers become float64. NaN and the
// infinities are not numbers a workflow can mean; strings like "nan" or
// "inf" stay strings.
func convertScalar(raw interface{}) interface{} {
	switch v := raw.(type) {
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
		return v
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return raw
	}
}

// evaluateCondition takes the raw operands. Equality and ordering compare
// numerically where both sides parse as numbers; containment always runs on
// the string renderings so numeric-looking substrings are not coerced away.
func evaluateCondition(left interface{}, operator string, right interface{}) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(operator)) {
	case "equals", "==":
		return scalarEquals(convertScalar(left), convertScalar(right)), nil
	case "not equals", "!=":
		return !scalarEquals(convertScalar(left), convertScalar(right)), nil
	case "less than", "<":
		return scalarOrder(convertScalar(left), convertScalar(right), func(c int) bool { return c < 0 })
	case "greater than", ">":
		return scalarOrder(convertScalar(left), convertScalar(right), func(c int) bool { return c > 0 })
	case "less than or equal", "<=":
		return scalarOrder(convertScalar(left), convertScalar(right), func(c int) bool { return c <= 0 })
	case "greater than or equal", ">=":
		return scalarOrder(convertScalar(left), convertScalar(right), func(c int) bool { return c >= 0 })
	case "contains", "includes":
		return strings.Contains(coerceString(left), coerceString(right)), nil
	case "does not contain", "not contains", "not includes":
		return !strings.Contains(coerceString(left), coerceString(right)), nil
	}
	return false, fmt.Errorf("unsupported operator: %s", operator)
}

func scalarEquals(left, right interface{}) bool {
	if lf, lok := left.(float64); lok {
		rf, rok := right.(float64)
		return rok && lf == rf
	}
	return left == right
}

// scalarOrder compares two operands of the same kind and applies the
// predicate to the sign of the comparison.
func scalarOrder(left, right interface{}, predicate func(int) bool) (bool, error) {
	lf, lok := left.(float64)
	rf, rok := right.(float64)
	if lok && rok {
		switch {
		case lf < rf:
			return predicate(-1), nil
		case lf > rf:
			return predicate(1), nil
		default:
			return predicate(0), nil
		}
	}
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		return predicate(strings.Compare(ls, rs)), nil
	}
	return false, fmt.Errorf("cannot order %T against %T", left, right)
}
