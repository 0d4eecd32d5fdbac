/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package nodes

import (
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	v1 "github.com/Memo-Aldu/flow-builder/pkg/apis/v1"
	"github.com/Memo-Aldu/flow-builder/pkg/browser"
	"github.com/Memo-Aldu/flow-builder/pkg/database/client"
	"github.com/Memo-Aldu/flow-builder/pkg/database/utils"
)

// PhaseScratch is the in-memory state of one execution phase: the bound
// node, the persisted phase row id and the buffered log lines. Logs stay
// in memory until the runner flushes them after the phase finishes.
type PhaseScratch struct {
	PhaseId string
	Node    v1.Node

	env  *Environment
	logs []*client.ExecutionLog
}

// AddLog buffers one log line for this phase. Timestamps are strictly
// monotonic inside the execution so replay ordering is stable even when
// lines land within the same clock tick.
func (p *PhaseScratch) AddLog(level v1.LogLevel, message string) {
	p.logs = append(p.logs, &client.ExecutionLog{
		Id:               uuid.NewString(),
		ExecutionPhaseId: p.PhaseId,
		LogLevel:         string(level),
		Message:          message,
		Timestamp:        utils.NullTime(p.env.nextLogTime()),
	})
}

// Logs returns the buffered log lines in append order.
func (p *PhaseScratch) Logs() []*client.ExecutionLog {
	return p.logs
}

// Environment is the per-execution scratchpad. It is process-local and
// never shared between executions: phase scratch, node outputs addressable
// by edges, and the lazily launched browser with its single current page.
type Environment struct {
	ExecutionId string
	UserId      string

	// Phases indexes scratch by node id.
	Phases map[string]*PhaseScratch
	// Resources holds node outputs keyed by source node id then output handle.
	Resources map[string]map[string]interface{}
	// Browser is nil until a launch node constructs it. All browser
	// operations act on its single current page.
	Browser browser.Driver

	lastLogAt time.Time
}

// NewEnvironment creates an empty environment for one execution.
func NewEnvironment(executionId, userId string) *Environment {
	return &Environment{
		ExecutionId: executionId,
		UserId:      userId,
		Phases:      map[string]*PhaseScratch{},
		Resources:   map[string]map[string]interface{}{},
	}
}

// BindPhase attaches a persisted phase row to its node and returns the scratch.
func (e *Environment) BindPhase(phaseId string, node v1.Node) *PhaseScratch {
	scratch := &PhaseScratch{PhaseId: phaseId, Node: node, env: e}
	e.Phases[node.Id] = scratch
	return scratch
}

// Phase returns the scratch bound to nodeId, or nil when the node has no
// phase yet.
func (e *Environment) Phase(nodeId string) *PhaseScratch {
	return e.Phases[nodeId]
}

// SetOutputs publishes a node's outputs for downstream edges.
func (e *Environment) SetOutputs(nodeId string, outputs map[string]interface{}) {
	if outputs == nil {
		outputs = map[string]interface{}{}
	}
	e.Resources[nodeId] = outputs
}

// Resource looks up one output handle of a completed node.
func (e *Environment) Resource(nodeId, handle string) (interface{}, bool) {
	outputs, ok := e.Resources[nodeId]
	if !ok {
		return nil, false
	}
	value, ok := outputs[handle]
	return value, ok
}

// Cleanup releases everything the execution acquired. It is invoked on
// every exit path: the browser and its page are closed first, resources
// are cleared last.
func (e *Environment) Cleanup() {
	if e.Browser != nil {
		if err := e.Browser.Close(); err != nil {
			klog.ErrorS(err, "failed to close browser", "execution", e.ExecutionId)
		}
		e.Browser = nil
	}
	e.Resources = map[string]map[string]interface{}{}
}

// nextLogTime returns a timestamp strictly after every one handed out
// before it.
func (e *Environment) nextLogTime() time.Time {
	now := time.Now().UTC()
	if !now.After(e.lastLogAt) {
		now = e.lastLogAt.Add(time.Millisecond)
	}
	e.lastLogAt = now
	return now
}
