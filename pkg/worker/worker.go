/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package worker

import (
	"context"
	"time"

	"github.com/lib/pq"
	"k8s.io/klog/v2"

	v1 "github.com/Memo-Aldu/flow-builder/pkg/apis/v1"
	"github.com/Memo-Aldu/flow-builder/pkg/config"
	"github.com/Memo-Aldu/flow-builder/pkg/cronexpr"
	"github.com/Memo-Aldu/flow-builder/pkg/database/client"
	"github.com/Memo-Aldu/flow-builder/pkg/database/utils"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
	"github.com/Memo-Aldu/flow-builder/pkg/metrics"
	"github.com/Memo-Aldu/flow-builder/pkg/queue"
	"github.com/Memo-Aldu/flow-builder/pkg/utils/backoff"
)

// receiveRetryDelay is how long the loop waits after a failed receive.
const receiveRetryDelay = 5 * time.Second

// Store is the persistence surface the worker needs around a run.
type Store interface {
	GetWorkflowForUser(ctx context.Context, workflowId, userId string) (*client.Workflow, error)
	GetWorkflowExecution(ctx context.Context, executionId, userId string) (*client.WorkflowExecution, error)
	PatchWorkflowRun(ctx context.Context, workflow *client.Workflow) error
}

// WorkflowRunner drives one execution to a terminal status.
type WorkflowRunner interface {
	RunWorkflow(ctx context.Context, workflow *client.Workflow, execution *client.WorkflowExecution) (v1.ExecutionStatus, error)
}

// Worker consumes dispatch messages and runs the executions they name.
// Messages are processed sequentially; the queue's visibility timeout
// bounds redelivery when a worker dies mid-message.
type Worker struct {
	queue  queue.Interface
	store  Store
	runner WorkflowRunner
}

// New builds a Worker.
func New(q queue.Interface, store Store, runner WorkflowRunner) *Worker {
	return &Worker{queue: q, store: store, runner: runner}
}

// Run executes the configured operating mode: a long-poll loop, or a single
// receive-and-drain pass for event-driven hosts. Polling mode off or exit
// after completion both select the one-shot pass.
func (w *Worker) Run(ctx context.Context) error {
	if !config.IsPollingMode() || config.IsExitAfterCompletion() {
		return w.runOnce(ctx)
	}
	klog.Infof("worker polling queue %s", w.queue.Name())
	for {
		select {
		case <-ctx.Done():
			klog.Info("worker shutting down")
			return nil
		default:
		}
		messages, err := w.queue.Receive(ctx, config.GetMaxPollMessages(), config.GetPollWaitTimeSecond())
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			klog.ErrorS(err, "failed to receive messages")
			select {
			case <-time.After(receiveRetryDelay):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		w.drain(ctx, messages)
	}
}

// runOnce receives one batch and processes it, for hosts that start the
// worker per event and expect it to exit.
func (w *Worker) runOnce(ctx context.Context) error {
	messages, err := w.queue.Receive(ctx, config.GetMaxPollMessages(), 0)
	if err != nil {
		return err
	}
	klog.Infof("one-shot mode: received %d messages", len(messages))
	w.drain(ctx, messages)
	return nil
}

// drain processes messages sequentially. In-flight messages finish even
// when shutdown is requested; the loop stops between messages.
func (w *Worker) drain(ctx context.Context, messages []*queue.ReceivedMessage) {
	for i, message := range messages {
		if i > 0 && ctx.Err() != nil {
			return
		}
		metrics.MessagesReceived.Inc()
		if err := w.Process(context.WithoutCancel(ctx), message); err != nil {
			klog.ErrorS(err, "failed to process message, leaving it for redelivery",
				"messageId", message.MessageId)
		}
	}
}

// Process handles one dispatch message end to end. A nil return means the
// message was acked; an error leaves it on the queue for redelivery.
func (w *Worker) Process(ctx context.Context, message *queue.ReceivedMessage) error {
	parsed, err := queue.ParseMessage(message.Body)
	if err != nil {
		klog.ErrorS(err, "dropping poison message", "messageId", message.MessageId, "body", message.Body)
		metrics.PoisonMessages.Inc()
		return w.ack(ctx, message.ReceiptHandle)
	}

	workflow, err := w.store.GetWorkflowForUser(ctx, parsed.WorkflowId, parsed.UserId)
	if err != nil {
		return w.dropIfOrphan(ctx, message, "workflow", parsed.WorkflowId, err)
	}
	execution, err := w.store.GetWorkflowExecution(ctx, parsed.ExecutionId, parsed.UserId)
	if err != nil {
		return w.dropIfOrphan(ctx, message, "execution", parsed.ExecutionId, err)
	}

	now := time.Now().UTC()
	workflow.LastRunId = utils.NullString(execution.Id)
	workflow.LastRunStatus = utils.NullString(string(v1.ExecutionRunning))
	workflow.LastRunAt = utils.NullTime(now)
	if err := w.store.PatchWorkflowRun(ctx, workflow); err != nil {
		return err
	}

	status, err := w.runner.RunWorkflow(ctx, workflow, execution)
	if err != nil {
		// A runner error means the terminal status was not persisted; the
		// execution row may still read RUNNING. Leave the message for
		// redelivery, which the runner's RUNNING-on-entry guard absorbs.
		return err
	}
	metrics.ExecutionsProcessed.WithLabelValues(string(status)).Inc()

	// The terminal status is persisted from here on: every remaining step is
	// best effort and never leaves the message un-acked.
	workflow.LastRunStatus = utils.NullString(string(status))
	workflow.LastRunAt = utils.NullTime(time.Now().UTC())
	workflow.NextRunAt = w.recomputeNextRun(workflow)
	if err := w.store.PatchWorkflowRun(ctx, workflow); err != nil {
		klog.ErrorS(err, "failed to patch workflow after run", "workflow", workflow.Id)
	}
	return w.ack(ctx, message.ReceiptHandle)
}

// ack deletes a message, retrying transient queue failures so a finished
// execution is not redelivered over a network blip.
func (w *Worker) ack(ctx context.Context, receiptHandle string) error {
	return backoff.TransientRetry(func() error {
		return w.queue.Delete(ctx, receiptHandle)
	}, 3, time.Second)
}

// dropIfOrphan acks messages that name deleted rows and propagates every
// other load failure so the message is retried.
func (w *Worker) dropIfOrphan(ctx context.Context, message *queue.ReceivedMessage, kind, id string, err error) error {
	if flowerrors.IsNotFound(err) {
		klog.Warningf("dropping message for missing %s %s", kind, id)
		return w.ack(ctx, message.ReceiptHandle)
	}
	return err
}

// recomputeNextRun derives the workflow's next scheduled run from its cron
// expression. A missing cron or a parse failure yields null.
func (w *Worker) recomputeNextRun(workflow *client.Workflow) pq.NullTime {
	cron := utils.ParseNullString(workflow.Cron)
	if cron == "" {
		return utils.NullTimePtr(nil)
	}
	next, err := cronexpr.Next(cron, time.Now().UTC())
	if err != nil {
		klog.ErrorS(err, "unparsable cron expression, clearing next run",
			"workflow", workflow.Id, "cron", cron)
		return utils.NullTimePtr(nil)
	}
	return utils.NullTime(next)
}
