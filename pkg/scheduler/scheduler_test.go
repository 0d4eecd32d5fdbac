/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package scheduler

import (
	"context"
	"testing"
	"time"

	"gotest.tools/assert"

	v1 "github.com/Memo-Aldu/flow-builder/pkg/apis/v1"
	"github.com/Memo-Aldu/flow-builder/pkg/database/client"
	"github.com/Memo-Aldu/flow-builder/pkg/database/utils"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
	"github.com/Memo-Aldu/flow-builder/pkg/queue"
)

type fakeSchedulerStore struct {
	due             []*client.Workflow
	executions      []*client.WorkflowExecution
	nextRuns        map[string]*time.Time
	insertErr       error
	guestsDeleted   int
	sessionsDeleted int
	guestsErr       error
	guestsCalled    bool
	sessionsCalled  bool
}

func newFakeSchedulerStore() *fakeSchedulerStore {
	return &fakeSchedulerStore{nextRuns: map[string]*time.Time{}}
}

func (s *fakeSchedulerStore) GetDueWorkflows(_ context.Context, _ time.Time) ([]*client.Workflow, error) {
	return s.due, nil
}

func (s *fakeSchedulerStore) InsertWorkflowExecution(_ context.Context, execution *client.WorkflowExecution) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.executions = append(s.executions, execution)
	return nil
}

func (s *fakeSchedulerStore) SetWorkflowNextRun(_ context.Context, workflowId string, nextRunAt *time.Time) error {
	s.nextRuns[workflowId] = nextRunAt
	return nil
}

func (s *fakeSchedulerStore) DeleteExpiredGuests(_ context.Context, _ time.Time) (int, error) {
	s.guestsCalled = true
	if s.guestsErr != nil {
		return 0, s.guestsErr
	}
	return s.guestsDeleted, nil
}

func (s *fakeSchedulerStore) DeleteExpiredGuestSessions(_ context.Context, _ time.Time) (int, error) {
	s.sessionsCalled = true
	return s.sessionsDeleted, nil
}

type sendingQueue struct {
	sent    []*queue.Message
	sendErr error
}

func (q *sendingQueue) Name() string { return "fake" }

func (q *sendingQueue) Send(_ context.Context, msg *queue.Message) (string, error) {
	if q.sendErr != nil {
		return "", q.sendErr
	}
	q.sent = append(q.sent, msg)
	return "m-1", nil
}

func (q *sendingQueue) Receive(_ context.Context, _, _ int) ([]*queue.ReceivedMessage, error) {
	return nil, nil
}

func (q *sendingQueue) Delete(_ context.Context, _ string) error { return nil }

func dueWorkflow() *client.Workflow {
	return &client.Workflow{
		Id:        "workflow-1",
		UserId:    "user-1",
		Status:    string(v1.WorkflowPublished),
		Cron:      utils.NullString("*/5 * * * *"),
		NextRunAt: utils.NullTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func TestRunTickEnqueuesDueWorkflow(t *testing.T) {
	store := newFakeSchedulerStore()
	store.due = []*client.Workflow{dueWorkflow()}
	q := &sendingQueue{}
	now := time.Date(2025, 1, 1, 0, 0, 10, 0, time.UTC)

	New(store, q).RunTick(context.Background(), now)

	assert.Equal(t, len(store.executions), 1)
	execution := store.executions[0]
	assert.Equal(t, execution.Trigger, string(v1.TriggerScheduled))
	assert.Equal(t, execution.Status, string(v1.ExecutionPending))
	assert.Equal(t, execution.WorkflowId, "workflow-1")

	assert.Equal(t, len(q.sent), 1)
	assert.Equal(t, q.sent[0].ExecutionId, execution.Id)
	assert.Equal(t, q.sent[0].UserId, "user-1")
	assert.Equal(t, q.sent[0].QueuedAt, now)

	next := store.nextRuns["workflow-1"]
	assert.Assert(t, next != nil)
	assert.Equal(t, *next, time.Date(2025, 1, 1, 0, 5, 0, 0, time.UTC))
}

func TestRunTickAdvancesNextRunOnSendFailure(t *testing.T) {
	store := newFakeSchedulerStore()
	store.due = []*client.Workflow{dueWorkflow()}
	q := &sendingQueue{sendErr: flowerrors.NewTransient("queue unavailable")}

	New(store, q).RunTick(context.Background(), time.Date(2025, 1, 1, 0, 0, 10, 0, time.UTC))

	// The execution row exists but was never dispatched; next_run_at still
	// advances so the tick does not retry hot.
	assert.Equal(t, len(store.executions), 1)
	assert.Equal(t, len(q.sent), 0)
	assert.Assert(t, store.nextRuns["workflow-1"] != nil)
}

func TestRunTickSkipsWorkflowOnInsertFailure(t *testing.T) {
	store := newFakeSchedulerStore()
	store.due = []*client.Workflow{dueWorkflow()}
	store.insertErr = flowerrors.NewTransient("db unavailable")
	q := &sendingQueue{}

	New(store, q).RunTick(context.Background(), time.Now().UTC())

	assert.Equal(t, len(q.sent), 0)
	_, patched := store.nextRuns["workflow-1"]
	assert.Assert(t, !patched)
}

func TestRunTickClearsNextRunOnBadCron(t *testing.T) {
	workflow := dueWorkflow()
	workflow.Cron = utils.NullString("every five minutes")
	store := newFakeSchedulerStore()
	store.due = []*client.Workflow{workflow}

	New(store, &sendingQueue{}).RunTick(context.Background(), time.Now().UTC())

	next, patched := store.nextRuns["workflow-1"]
	assert.Assert(t, patched)
	assert.Assert(t, next == nil)
}

func TestRunCleanupReapsGuestsAndSessions(t *testing.T) {
	store := newFakeSchedulerStore()
	store.guestsDeleted = 2
	store.sessionsDeleted = 3

	New(store, &sendingQueue{}).RunCleanup(context.Background(), time.Now().UTC())

	assert.Assert(t, store.guestsCalled)
	assert.Assert(t, store.sessionsCalled)
}

func TestRunCleanupContinuesPastGuestFailure(t *testing.T) {
	store := newFakeSchedulerStore()
	store.guestsErr = flowerrors.NewTransient("db unavailable")

	New(store, &sendingQueue{}).RunCleanup(context.Background(), time.Now().UTC())

	// Session cleanup still runs when reaping guests fails.
	assert.Assert(t, store.guestsCalled)
	assert.Assert(t, store.sessionsCalled)
}

func TestShouldRunCleanupModulo(t *testing.T) {
	tick := 5 * time.Minute
	cleanupEvery := time.Hour

	onTheHour := time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC)
	assert.Assert(t, shouldRunCleanup(onTheHour, tick, cleanupEvery))

	midHour := time.Date(2025, 1, 1, 3, 25, 0, 0, time.UTC)
	assert.Assert(t, !shouldRunCleanup(midHour, tick, cleanupEvery))

	// Replicas with the same wall clock agree.
	assert.Equal(t,
		shouldRunCleanup(onTheHour, tick, cleanupEvery),
		shouldRunCleanup(onTheHour, tick, cleanupEvery))

	assert.Assert(t, shouldRunCleanup(midHour, time.Hour, time.Hour))
	assert.Assert(t, !shouldRunCleanup(midHour, tick, 0))
}
