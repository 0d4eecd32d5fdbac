/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package v1

// Entity kinds used in error messages and lookups.
const (
	UserKind      = "User"
	WorkflowKind  = "Workflow"
	VersionKind   = "WorkflowVersion"
	ExecutionKind = "WorkflowExecution"
	PhaseKind     = "ExecutionPhase"
	BalanceKind   = "UserBalance"
	CredKind      = "Credential"
)

// WorkflowStatus is the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowDraft     WorkflowStatus = "DRAFT"
	WorkflowPublished WorkflowStatus = "PUBLISHED"
	WorkflowDisabled  WorkflowStatus = "DISABLED"
)

// ExecutionStatus is the lifecycle state of a workflow execution.
// Transitions are monotonic: PENDING -> RUNNING -> (COMPLETED | FAILED);
// CANCELED is reachable only from PENDING or RUNNING.
type ExecutionStatus string

const (
	ExecutionPending   ExecutionStatus = "PENDING"
	ExecutionRunning   ExecutionStatus = "RUNNING"
	ExecutionCompleted ExecutionStatus = "COMPLETED"
	ExecutionFailed    ExecutionStatus = "FAILED"
	ExecutionCanceled  ExecutionStatus = "CANCELED"
)

// IsTerminal reports whether the status admits no further transitions.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionCompleted || s == ExecutionFailed || s == ExecutionCanceled
}

// PhaseStatus is the lifecycle state of one executed node.
type PhaseStatus string

const (
	PhasePending   PhaseStatus = "PENDING"
	PhaseRunning   PhaseStatus = "RUNNING"
	PhaseCompleted PhaseStatus = "COMPLETED"
	PhaseFailed    PhaseStatus = "FAILED"
)

// Trigger identifies how an execution was started.
type Trigger string

const (
	TriggerManual    Trigger = "MANUAL"
	TriggerScheduled Trigger = "SCHEDULED"
	TriggerAPI       Trigger = "API"
)

// LogLevel classifies execution log lines.
type LogLevel string

const (
	LogDebug   LogLevel = "DEBUG"
	LogInfo    LogLevel = "INFO"
	LogWarning LogLevel = "WARNING"
	LogError   LogLevel = "ERROR"
)

// NodeData carries a node's type and its literal authoring inputs.
type NodeData struct {
	Type   string                 `json:"type"`
	Inputs map[string]interface{} `json:"inputs"`
}

// Node is one vertex of the authoring graph.
type Node struct {
	Id   string   `json:"id"`
	Data NodeData `json:"data"`
}

// Edge connects a source node's output handle to a target node's input handle.
type Edge struct {
	Source       string `json:"source"`
	SourceHandle string `json:"sourceHandle"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle"`
}

// Definition is the authoring graph persisted on a workflow version.
type Definition struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// PhaseBlock lists nodes runnable once all nodes in earlier blocks complete.
type PhaseBlock struct {
	Phase int    `json:"phase"`
	Nodes []Node `json:"nodes"`
}

// ExecutionPlan is the phased ordering persisted on a workflow version.
type ExecutionPlan []PhaseBlock
