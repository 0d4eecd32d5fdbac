/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package nodes

import (
	"context"
	"testing"

	"gotest.tools/assert"
)

func runBranch(t *testing.T, inputs map[string]interface{}) map[string]interface{} {
	t.Helper()
	node := testNode("branch-1", TypeBranch, inputs)
	outputs, err := (&branchExecutor{}).Run(context.Background(), node, testEnv(node))
	assert.NilError(t, err)
	return outputs
}

func TestBranchTruePath(t *testing.T) {
	outputs := runBranch(t, map[string]interface{}{
		HandleLeftValue:  float64(10),
		HandleOperator:   ">",
		HandleRightValue: "5",
	})
	assert.Equal(t, outputs[OutputTruePath], "execute")
	assert.Assert(t, outputs[OutputFalsePath] == nil)
	assert.Equal(t, outputs[OutputResult], true)
	assert.Equal(t, outputs[OutputData], float64(10))
}

func TestBranchFalsePath(t *testing.T) {
	outputs := runBranch(t, map[string]interface{}{
		HandleLeftValue:  "abc",
		HandleOperator:   "contains",
		HandleRightValue: "xyz",
	})
	assert.Assert(t, outputs[OutputTruePath] == nil)
	assert.Equal(t, outputs[OutputFalsePath], "execute")
	assert.Equal(t, outputs[OutputResult], false)
}

func TestBranchOperators(t *testing.T) {
	cases := []struct {
		left     interface{}
		operator string
		right    interface{}
		expect   bool
	}{
		{"10", "==", float64(10), true},
		{"10", "equals", "10.0", true},
		{"a", "!=", "b", true},
		{float64(3), "<", float64(4), true},
		{float64(4), "<=", "4", true},
		{"5", ">=", float64(6), false},
		{"banana", "includes", "nan", true},
		{"banana", "not contains", "nan", false},
		{"apple", "greater than", "banana", false},
		{"1e3", "contains", "e", true},
		{"information", "includes", "inf", true},
		{"nan", "equals", "nan", true},
		{"infinity", "==", "infinity", true},
	}
	for _, c := range cases {
		result, err := evaluateCondition(c.left, c.operator, c.right)
		assert.NilError(t, err)
		assert.Equal(t, result, c.expect, "%v %s %v", c.left, c.operator, c.right)
	}
}

func TestBranchUnsupportedOperator(t *testing.T) {
	node := testNode("branch-1", TypeBranch, map[string]interface{}{
		HandleLeftValue:  "a",
		HandleOperator:   "almost equals",
		HandleRightValue: "b",
	})
	_, err := (&branchExecutor{}).Run(context.Background(), node, testEnv(node))
	assert.ErrorContains(t, err, "error evaluating condition")
}

func TestBranchOrderingTypeMismatch(t *testing.T) {
	_, err := evaluateCondition("abc", "<", float64(3))
	assert.ErrorContains(t, err, "cannot order")
}
