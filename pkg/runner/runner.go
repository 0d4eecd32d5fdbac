/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package runner

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	v1 "github.com/Memo-Aldu/flow-builder/pkg/apis/v1"
	"github.com/Memo-Aldu/flow-builder/pkg/credits"
	"github.com/Memo-Aldu/flow-builder/pkg/database/client"
	"github.com/Memo-Aldu/flow-builder/pkg/database/utils"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
	"github.com/Memo-Aldu/flow-builder/pkg/runner/nodes"
	jsonutil "github.com/Memo-Aldu/flow-builder/pkg/utils/json"
	"github.com/Memo-Aldu/flow-builder/pkg/utils/timeutil"
)

// Store is the persistence surface the runner depends on. The database
// client is the production implementation; tests use an in-memory fake.
type Store interface {
	GetActiveWorkflowVersion(ctx context.Context, workflowId string) (*client.WorkflowVersion, error)
	GetWorkflowExecution(ctx context.Context, executionId, userId string) (*client.WorkflowExecution, error)
	MarkExecutionStarted(ctx context.Context, executionId string, startedAt time.Time) error
	MarkExecutionFinished(ctx context.Context, executionId string, status v1.ExecutionStatus, creditsConsumed int) error
	InsertExecutionPhase(ctx context.Context, phase *client.ExecutionPhase) error
	MarkPhaseRunning(ctx context.Context, phaseId string, startedAt time.Time) error
	FinishExecutionPhase(ctx context.Context, phaseId string, status v1.PhaseStatus, outputs string, creditsConsumed int) error
	InsertExecutionLogs(ctx context.Context, logs []*client.ExecutionLog) error
}

// Runner executes one workflow execution end to end: phases in plan order,
// nodes sequentially within a phase, debit before run, everything persisted.
type Runner struct {
	store    Store
	ledger   credits.Ledger
	registry *nodes.Registry
}

// New builds a Runner.
func New(store Store, ledger credits.Ledger, registry *nodes.Registry) *Runner {
	return &Runner{store: store, ledger: ledger, registry: registry}
}

// RunWorkflow drives an execution to a terminal status and returns it.
// A failing node yields FAILED with a nil error; the returned error is
// reserved for persistence faults that kept the runner from recording the
// outcome.
func (r *Runner) RunWorkflow(ctx context.Context, workflow *client.Workflow, execution *client.WorkflowExecution) (v1.ExecutionStatus, error) {
	status := v1.ExecutionStatus(execution.Status)
	if status.IsTerminal() {
		klog.Infof("execution %s already %s, treating redelivery as a no-op", execution.Id, status)
		return status, nil
	}
	if status == v1.ExecutionRunning {
		return r.failRedelivered(ctx, execution)
	}

	env := nodes.NewEnvironment(execution.Id, execution.UserId)
	defer env.Cleanup()

	startedAt := time.Now().UTC()
	if err := r.store.MarkExecutionStarted(ctx, execution.Id, startedAt); err != nil {
		return status, err
	}

	version, err := r.store.GetActiveWorkflowVersion(ctx, workflow.Id)
	if err != nil {
		klog.ErrorS(err, "no runnable version", "workflow", workflow.Id, "execution", execution.Id)
		return v1.ExecutionFailed, r.store.MarkExecutionFinished(ctx, execution.Id, v1.ExecutionFailed, 0)
	}

	var definition v1.Definition
	var plan v1.ExecutionPlan
	if err := jsonutil.Unmarshal([]byte(version.Definition), &definition); err != nil {
		klog.ErrorS(err, "malformed workflow definition", "version", version.Id)
		return v1.ExecutionFailed, r.store.MarkExecutionFinished(ctx, execution.Id, v1.ExecutionFailed, 0)
	}
	if err := jsonutil.Unmarshal([]byte(version.ExecutionPlan), &plan); err != nil {
		klog.ErrorS(err, "malformed execution plan", "version", version.Id)
		return v1.ExecutionFailed, r.store.MarkExecutionFinished(ctx, execution.Id, v1.ExecutionFailed, 0)
	}

	edgesByTarget := map[string][]v1.Edge{}
	for _, edge := range definition.Edges {
		edgesByTarget[edge.Target] = append(edgesByTarget[edge.Target], edge)
	}

	totalCredits := 0
	phaseNumber := 0
	var nodeErr error

run:
	for _, block := range plan {
		if canceled, err := r.executionCanceled(ctx, execution.Id); err == nil && canceled {
			klog.Infof("execution %s canceled, stopping before phase block %d", execution.Id, block.Phase)
			return v1.ExecutionCanceled, nil
		}
		for _, node := range block.Nodes {
			phaseNumber++
			debited, err := r.runNode(ctx, node, edgesByTarget[node.Id], env, execution, phaseNumber)
			totalCredits += debited
			if err != nil {
				nodeErr = err
				break run
			}
		}
	}

	finalStatus := v1.ExecutionCompleted
	if nodeErr != nil {
		finalStatus = v1.ExecutionFailed
		klog.ErrorS(nodeErr, "execution failed", "execution", execution.Id, "creditsConsumed", totalCredits)
	}
	if err := r.store.MarkExecutionFinished(ctx, execution.Id, finalStatus, totalCredits); err != nil {
		return finalStatus, err
	}
	klog.Infof("execution %s finished, status: %s, credits: %d, took: %dms",
		execution.Id, finalStatus, totalCredits, timeutil.DurationMillis(startedAt, time.Now().UTC()))
	return finalStatus, nil
}

// runNode executes one node inside its own persisted phase and returns the
// credits debited for it.
func (r *Runner) runNode(ctx context.Context, node v1.Node, edges []v1.Edge, env *nodes.Environment, execution *client.WorkflowExecution, number int) (int, error) {
	wired, wireErr := wireInputs(node, edges, env)

	phase := &client.ExecutionPhase{
		Id:                  uuid.NewString(),
		WorkflowExecutionId: execution.Id,
		UserId:              execution.UserId,
		Number:              number,
		Name:                phaseName(node.Data.Type),
		Status:              string(v1.PhasePending),
		Node:                utils.NullString(jsonutil.MarshalString(wired)),
		Inputs:              utils.NullString(jsonutil.MarshalString(wired.Data.Inputs)),
	}
	if err := r.store.InsertExecutionPhase(ctx, phase); err != nil {
		return 0, err
	}
	scratch := env.BindPhase(phase.Id, wired)
	if err := r.store.MarkPhaseRunning(ctx, phase.Id, time.Now().UTC()); err != nil {
		return 0, err
	}

	if wireErr != nil {
		scratch.AddLog(v1.LogError, wireErr.Error())
		return 0, r.failPhase(ctx, scratch, 0, wireErr)
	}

	registration, err := r.registry.Lookup(wired.Data.Type)
	if err != nil {
		scratch.AddLog(v1.LogError, err.Error())
		return 0, r.failPhase(ctx, scratch, 0, err)
	}

	if err := r.ledger.Debit(ctx, execution.UserId, registration.Cost); err != nil {
		scratch.AddLog(v1.LogError, err.Error())
		return 0, r.failPhase(ctx, scratch, 0, err)
	}

	if err := r.registry.ValidateInputs(wired); err != nil {
		scratch.AddLog(v1.LogError, err.Error())
		return registration.Cost, r.failPhase(ctx, scratch, registration.Cost, err)
	}

	outputs, err := registration.Executor.Run(ctx, wired, env)
	if err != nil {
		return registration.Cost, r.failPhase(ctx, scratch, registration.Cost, err)
	}

	env.SetOutputs(wired.Id, outputs)
	if err := r.store.FinishExecutionPhase(ctx, phase.Id, v1.PhaseCompleted,
		jsonutil.MarshalString(outputs), registration.Cost); err != nil {
		return registration.Cost, err
	}
	r.flushLogs(ctx, scratch)
	return registration.Cost, nil
}

// failPhase records a failed phase with whatever credits were debited for it
// and returns the causing error.
func (r *Runner) failPhase(ctx context.Context, scratch *nodes.PhaseScratch, debited int, cause error) error {
	if err := r.store.FinishExecutionPhase(ctx, scratch.PhaseId, v1.PhaseFailed, "", debited); err != nil {
		klog.ErrorS(err, "failed to persist phase failure", "phase", scratch.PhaseId)
	}
	r.flushLogs(ctx, scratch)
	return cause
}

// flushLogs writes the phase's buffered log lines. Log persistence is best
// effort; a write failure never alters the execution outcome.
func (r *Runner) flushLogs(ctx context.Context, scratch *nodes.PhaseScratch) {
	logs := scratch.Logs()
	if len(logs) == 0 {
		return
	}
	if err := r.store.InsertExecutionLogs(ctx, logs); err != nil {
		klog.ErrorS(err, "failed to persist execution logs", "phase", scratch.PhaseId)
	}
}

// failRedelivered handles a message that arrives while the execution is
// already RUNNING: a crash ate the previous attempt. A synthetic phase
// records the event and the execution fails without re-debiting.
func (r *Runner) failRedelivered(ctx context.Context, execution *client.WorkflowExecution) (v1.ExecutionStatus, error) {
	phase := &client.ExecutionPhase{
		Id:                  uuid.NewString(),
		WorkflowExecutionId: execution.Id,
		UserId:              execution.UserId,
		Number:              0,
		Name:                "Redelivery",
		Status:              string(v1.PhaseFailed),
		StartedAt:           utils.NullTime(time.Now().UTC()),
		CompletedAt:         utils.NullTime(time.Now().UTC()),
	}
	if err := r.store.InsertExecutionPhase(ctx, phase); err != nil {
		return v1.ExecutionRunning, err
	}
	log := &client.ExecutionLog{
		Id:               uuid.NewString(),
		ExecutionPhaseId: phase.Id,
		LogLevel:         string(v1.LogWarning),
		Message:          "message redelivered while the execution was RUNNING; a previous worker likely crashed",
		Timestamp:        utils.NullTime(time.Now().UTC()),
	}
	if err := r.store.InsertExecutionLogs(ctx, []*client.ExecutionLog{log}); err != nil {
		klog.ErrorS(err, "failed to persist redelivery log", "execution", execution.Id)
	}
	consumed := int(utils.ParseNullInt64(execution.CreditsConsumed))
	if err := r.store.MarkExecutionFinished(ctx, execution.Id, v1.ExecutionFailed, consumed); err != nil {
		return v1.ExecutionRunning, err
	}
	return v1.ExecutionFailed, nil
}

// executionCanceled reloads the execution between phase blocks so API-side
// cancellation takes effect without mid-node interruption.
func (r *Runner) executionCanceled(ctx context.Context, executionId string) (bool, error) {
	execution, err := r.store.GetWorkflowExecution(ctx, executionId, "")
	if err != nil {
		return false, err
	}
	return v1.ExecutionStatus(execution.Status) == v1.ExecutionCanceled, nil
}

// wireInputs copies the node's literal inputs and overlays values produced
// by upstream edges. The Web Page handle orders execution only; the page
// travels through the environment.
func wireInputs(node v1.Node, edges []v1.Edge, env *nodes.Environment) (v1.Node, error) {
	inputs := make(map[string]interface{}, len(node.Data.Inputs))
	for handle, value := range node.Data.Inputs {
		inputs[handle] = value
	}
	var wireErr error
	for _, edge := range edges {
		if edge.TargetHandle == nodes.WebPageHandle {
			continue
		}
		value, ok := env.Resource(edge.Source, edge.SourceHandle)
		if !ok {
			if wireErr == nil {
				wireErr = flowerrors.NewUnresolvedInput(node.Id, edge.TargetHandle)
			}
			continue
		}
		inputs[edge.TargetHandle] = value
	}
	wired := node
	wired.Data.Inputs = inputs
	return wired, wireErr
}

// phaseName renders a node type as the phase display name, e.g.
// "launch_standard_browser" becomes "Launch Standard Browser".
func phaseName(nodeType string) string {
	words := strings.Split(nodeType, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
