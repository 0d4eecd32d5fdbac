/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	v1 "github.com/Memo-Aldu/flow-builder/pkg/apis/v1"
	"github.com/Memo-Aldu/flow-builder/pkg/config"
	"github.com/Memo-Aldu/flow-builder/pkg/cronexpr"
	"github.com/Memo-Aldu/flow-builder/pkg/database/client"
	"github.com/Memo-Aldu/flow-builder/pkg/database/utils"
	"github.com/Memo-Aldu/flow-builder/pkg/metrics"
	"github.com/Memo-Aldu/flow-builder/pkg/queue"
)

// Store is the persistence surface the scheduler needs.
type Store interface {
	GetDueWorkflows(ctx context.Context, now time.Time) ([]*client.Workflow, error)
	InsertWorkflowExecution(ctx context.Context, execution *client.WorkflowExecution) error
	SetWorkflowNextRun(ctx context.Context, workflowId string, nextRunAt *time.Time) error
	DeleteExpiredGuests(ctx context.Context, now time.Time) (int, error)
	DeleteExpiredGuestSessions(ctx context.Context, now time.Time) (int, error)
}

// Scheduler enqueues due workflows on a fixed cadence and periodically reaps
// expired guests. It takes no locks: concurrent replicas may each enqueue a
// due workflow once, and the runner's redelivery handling absorbs that.
type Scheduler struct {
	store Store
	queue queue.Interface
}

// New builds a Scheduler.
func New(store Store, q queue.Interface) *Scheduler {
	return &Scheduler{store: store, queue: q}
}

// Start ticks until ctx is canceled. One tick runs immediately on start.
func (s *Scheduler) Start(ctx context.Context) error {
	tick := time.Duration(config.GetSchedulerTickIntervalSecond()) * time.Second
	cleanupEvery := time.Duration(config.GetSchedulerCleanupIntervalMinute()) * time.Minute
	klog.Infof("scheduler ticking every %s, cleanup every %s", tick, cleanupEvery)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		now := time.Now().UTC()
		s.RunTick(ctx, now)
		if shouldRunCleanup(now, tick, cleanupEvery) {
			s.RunCleanup(ctx, now)
		}
		select {
		case <-ctx.Done():
			klog.Info("scheduler shutting down")
			return nil
		case <-ticker.C:
		}
	}
}

// RunTick enqueues one execution for every published workflow whose
// next_run_at has passed, then advances next_run_at from the cron.
func (s *Scheduler) RunTick(ctx context.Context, now time.Time) {
	workflows, err := s.store.GetDueWorkflows(ctx, now)
	if err != nil {
		klog.ErrorS(err, "failed to load due workflows")
		return
	}
	if len(workflows) > 0 {
		klog.Infof("scheduling %d due workflows", len(workflows))
	}
	for _, workflow := range workflows {
		s.dispatch(ctx, workflow, now)
	}
}

// dispatch creates the execution row, enqueues its message and advances the
// workflow's next run. A failed send still advances next_run_at: the
// execution row stays PENDING and the tick must not retry it hot.
func (s *Scheduler) dispatch(ctx context.Context, workflow *client.Workflow, now time.Time) {
	execution := &client.WorkflowExecution{
		Id:         uuid.NewString(),
		WorkflowId: workflow.Id,
		UserId:     workflow.UserId,
		Trigger:    string(v1.TriggerScheduled),
		Status:     string(v1.ExecutionPending),
		CreatedAt:  utils.NullTime(now),
	}
	if err := s.store.InsertWorkflowExecution(ctx, execution); err != nil {
		klog.ErrorS(err, "failed to create scheduled execution", "workflow", workflow.Id)
		return
	}

	if _, err := s.queue.Send(ctx, &queue.Message{
		ExecutionId: execution.Id,
		WorkflowId:  workflow.Id,
		UserId:      workflow.UserId,
		Trigger:     execution.Trigger,
		Status:      execution.Status,
		QueuedAt:    now,
	}); err != nil {
		klog.ErrorS(err, "failed to enqueue scheduled execution",
			"workflow", workflow.Id, "execution", execution.Id)
	} else {
		metrics.WorkflowsScheduled.Inc()
	}

	s.advanceNextRun(ctx, workflow, now)
}

func (s *Scheduler) advanceNextRun(ctx context.Context, workflow *client.Workflow, now time.Time) {
	cron := utils.ParseNullString(workflow.Cron)
	if cron == "" {
		if err := s.store.SetWorkflowNextRun(ctx, workflow.Id, nil); err != nil {
			klog.ErrorS(err, "failed to clear next run", "workflow", workflow.Id)
		}
		return
	}
	next, err := cronexpr.Next(cron, now)
	if err != nil {
		klog.ErrorS(err, "unparsable cron expression, clearing next run",
			"workflow", workflow.Id, "cron", cron)
		if err := s.store.SetWorkflowNextRun(ctx, workflow.Id, nil); err != nil {
			klog.ErrorS(err, "failed to clear next run", "workflow", workflow.Id)
		}
		return
	}
	if err := s.store.SetWorkflowNextRun(ctx, workflow.Id, &next); err != nil {
		klog.ErrorS(err, "failed to advance next run", "workflow", workflow.Id)
	}
}

// RunCleanup reaps expired guest users and orphan guest sessions. Owned
// rows go with the user via foreign key cascades.
func (s *Scheduler) RunCleanup(ctx context.Context, now time.Time) {
	reaped, err := s.store.DeleteExpiredGuests(ctx, now)
	if err != nil {
		klog.ErrorS(err, "failed to reap expired guests")
	} else if reaped > 0 {
		klog.Infof("reaped %d expired guest users", reaped)
		metrics.GuestsReaped.Add(float64(reaped))
	}
	sessions, err := s.store.DeleteExpiredGuestSessions(ctx, now)
	if err != nil {
		klog.ErrorS(err, "failed to delete expired guest sessions")
	} else if sessions > 0 {
		klog.Infof("deleted %d expired guest sessions", sessions)
	}
}

// shouldRunCleanup decides cleanup ticks by wall-clock modulo so replicas
// converge on the same ticks without shared state.
func shouldRunCleanup(now time.Time, tick, cleanupEvery time.Duration) bool {
	if cleanupEvery <= 0 {
		return false
	}
	if tick >= cleanupEvery {
		return true
	}
	return now.Unix()%int64(cleanupEvery/time.Second) < int64(tick/time.Second)
}
