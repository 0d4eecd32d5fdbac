/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package nodes

import (
	"testing"

	"gotest.tools/assert"

	v1 "github.com/Memo-Aldu/flow-builder/pkg/apis/v1"
)

func TestEnvironmentResources(t *testing.T) {
	env := NewEnvironment("execution-1", "user-1")
	env.SetOutputs("node-a", map[string]interface{}{"Text": "hello"})

	value, ok := env.Resource("node-a", "Text")
	assert.Assert(t, ok)
	assert.Equal(t, value, "hello")

	_, ok = env.Resource("node-a", "Missing")
	assert.Assert(t, !ok)
	_, ok = env.Resource("node-b", "Text")
	assert.Assert(t, !ok)
}

func TestEnvironmentLogTimestampsMonotonic(t *testing.T) {
	node := testNode("node-a", TypeDelay, nil)
	env := NewEnvironment("execution-1", "user-1")
	scratch := env.BindPhase("phase-1", node)

	for i := 0; i < 5; i++ {
		scratch.AddLog(v1.LogInfo, "line")
	}
	logs := scratch.Logs()
	assert.Equal(t, len(logs), 5)
	for i := 1; i < len(logs); i++ {
		assert.Assert(t, logs[i].Timestamp.Time.After(logs[i-1].Timestamp.Time))
		assert.Equal(t, logs[i].ExecutionPhaseId, "phase-1")
	}
}

func TestEnvironmentCleanup(t *testing.T) {
	env := NewEnvironment("execution-1", "user-1")
	driver := newFakeDriver("")
	env.Browser = driver
	env.SetOutputs("node-a", map[string]interface{}{"x": 1})

	env.Cleanup()
	assert.Assert(t, driver.closed)
	assert.Assert(t, env.Browser == nil)
	assert.Equal(t, len(env.Resources), 0)

	// Safe to call twice.
	env.Cleanup()
}
