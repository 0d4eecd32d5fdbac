/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package errors

import (
	"fmt"
	"net/http"
	"testing"

	"gotest.tools/assert"
)

func TestNewNotFoundReasonMapping(t *testing.T) {
	err := NewNotFound("Workflow", "wf-1")
	assert.Equal(t, err.Reason, WorkflowNotFound)
	assert.Equal(t, err.Code, http.StatusNotFound)
	assert.Assert(t, IsNotFound(err))

	err = NewNotFound("Credential", "cred-1")
	assert.Equal(t, err.Reason, NotFound)
	assert.Assert(t, IsNotFound(err))
}

func TestInsufficientCredits(t *testing.T) {
	err := NewInsufficientCredits("user-1", 5, 2)
	assert.Assert(t, IsInsufficientCredits(err))
	assert.Assert(t, !IsNotFound(err))
	assert.Equal(t, err.Code, http.StatusPaymentRequired)
	assert.ErrorContains(t, err, "requires 5 credits but has 2")
}

func TestReasonForWrappedError(t *testing.T) {
	inner := NewBadCron("* * *")
	wrapped := fmt.Errorf("scheduling workflow: %w", inner)
	assert.Equal(t, ReasonForError(wrapped), BadCronExpression)
	assert.Assert(t, IsBadRequest(wrapped))
}

func TestReasonForPlainError(t *testing.T) {
	err := fmt.Errorf("plain")
	assert.Equal(t, ReasonForError(err), "")
	assert.Equal(t, CodeForError(err), http.StatusInternalServerError)
	assert.Assert(t, !IsNotFound(err))
}

func TestIgnoreNotFound(t *testing.T) {
	assert.Assert(t, IgnoreNotFound(NewNotFound("WorkflowExecution", "x")) == nil)
	err := NewInternalError("boom")
	assert.Equal(t, IgnoreNotFound(err), error(err))
}

func TestWithErrorChaining(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	err := NewTransient("queue receive failed").WithError(inner)
	assert.Assert(t, IsTransient(err))
	assert.ErrorContains(t, err, "connection refused")
}
