/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const FlowPrefix = "Flow."

/*
   5-digit Error Code Convention: [xx][yyy]
   [xx] Business ID (00-99), used to distinguish errors from different business interfaces.
   00: General errors
   01: Workflow-related errors
   02: Execution-related errors
   03: Credit/billing-related errors
   04: Node/executor-related errors
   [yyy] Error code range (000-999)
*/

// public: 00xxx
const (
	InternalError = FlowPrefix + "00001"
	BadRequest    = FlowPrefix + "00002"
	Forbidden     = FlowPrefix + "00003"
	AlreadyExist  = FlowPrefix + "00004"
	NotFound      = FlowPrefix + "00005"
	Unauthorized  = FlowPrefix + "00006"
	Transient     = FlowPrefix + "00007"
)

// workflow: 01xxx
const (
	WorkflowNotFound  = FlowPrefix + "01001"
	VersionNotFound   = FlowPrefix + "01002"
	NoActiveVersion   = FlowPrefix + "01003"
	BadCronExpression = FlowPrefix + "01004"
)

// execution: 02xxx
const (
	ExecutionNotFound = FlowPrefix + "02001"
	PoisonMessage     = FlowPrefix + "02002"
)

// credits: 03xxx
const (
	InsufficientCredits = FlowPrefix + "03001"
	BalanceNotFound     = FlowPrefix + "03002"
)

// node: 04xxx
const (
	NodeTypeUnknown = FlowPrefix + "04001"
	UnresolvedInput = FlowPrefix + "04002"
	ExecutorFailure = FlowPrefix + "04003"
)

// StatusError carries an HTTP status code, a stable reason code and a
// human-readable message. It is the error currency of the whole system:
// gateways, the ledger and the runner all raise it, and the Is* helpers
// below classify it without type assertions at call sites.
type StatusError struct {
	Code    int
	Reason  string
	Message string
	Inner   error
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Inner == nil {
		return fmt.Sprintf("%s: %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Inner)
}

// Unwrap exposes the wrapped error to errors.Is/As.
func (e *StatusError) Unwrap() error {
	return e.Inner
}

// WithError wraps an underlying error and returns the StatusError for chaining.
func (e *StatusError) WithError(err error) *StatusError {
	e.Inner = err
	return e
}

// ReasonForError returns the reason code of err, or "" if err is not a StatusError.
func ReasonForError(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Reason
	}
	return ""
}

// CodeForError returns the HTTP status code of err, or 500 if err is not a StatusError.
func CodeForError(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	return http.StatusInternalServerError
}

func IsBadRequest(err error) bool {
	reason := ReasonForError(err)
	return reason == BadRequest || reason == BadCronExpression || reason == UnresolvedInput
}

func IsInternal(err error) bool {
	return ReasonForError(err) == InternalError
}

func IsNotFound(err error) bool {
	switch ReasonForError(err) {
	case NotFound, WorkflowNotFound, VersionNotFound, NoActiveVersion,
		ExecutionNotFound, BalanceNotFound:
		return true
	}
	return false
}

func IsAlreadyExist(err error) bool {
	return ReasonForError(err) == AlreadyExist
}

func IsInsufficientCredits(err error) bool {
	return ReasonForError(err) == InsufficientCredits
}

func IsTransient(err error) bool {
	return ReasonForError(err) == Transient
}

func IsPoisonMessage(err error) bool {
	return ReasonForError(err) == PoisonMessage
}

// IgnoreNotFound returns nil if err is a not-found error, err otherwise.
func IgnoreNotFound(err error) error {
	if err == nil || IsNotFound(err) {
		return nil
	}
	return err
}

func NewBadRequest(message string) *StatusError {
	return &StatusError{
		Code:    http.StatusBadRequest,
		Reason:  BadRequest,
		Message: fmt.Sprintf("Bad request. %s", message),
	}
}

func NewInternalError(message string) *StatusError {
	return &StatusError{
		Code:    http.StatusInternalServerError,
		Reason:  InternalError,
		Message: fmt.Sprintf("Internal error. %s", message),
	}
}

func NewAlreadyExist(message string) *StatusError {
	return &StatusError{
		Code:    http.StatusConflict,
		Reason:  AlreadyExist,
		Message: message,
	}
}

func NewForbidden(message string) *StatusError {
	return &StatusError{
		Code:    http.StatusForbidden,
		Reason:  Forbidden,
		Message: message,
	}
}

// notFoundReason maps an entity kind to its dedicated reason code.
func notFoundReason(kind string) string {
	switch kind {
	case "Workflow":
		return WorkflowNotFound
	case "WorkflowVersion":
		return VersionNotFound
	case "WorkflowExecution":
		return ExecutionNotFound
	case "UserBalance":
		return BalanceNotFound
	default:
		return NotFound
	}
}

func NewNotFound(kind, name string) *StatusError {
	return &StatusError{
		Code:    http.StatusNotFound,
		Reason:  notFoundReason(kind),
		Message: fmt.Sprintf("%s %s not found.", kind, name),
	}
}

func NewInsufficientCredits(userId string, required, available int) *StatusError {
	return &StatusError{
		Code:    http.StatusPaymentRequired,
		Reason:  InsufficientCredits,
		Message: fmt.Sprintf("user %s requires %d credits but has %d", userId, required, available),
	}
}

func NewBadCron(expr string) *StatusError {
	return &StatusError{
		Code:    http.StatusBadRequest,
		Reason:  BadCronExpression,
		Message: fmt.Sprintf("invalid cron expression %q", expr),
	}
}

func NewNoActiveVersion(workflowId string) *StatusError {
	return &StatusError{
		Code:    http.StatusConflict,
		Reason:  NoActiveVersion,
		Message: fmt.Sprintf("workflow %s has no active version", workflowId),
	}
}

func NewNodeTypeUnknown(nodeType string) *StatusError {
	return &StatusError{
		Code:    http.StatusUnprocessableEntity,
		Reason:  NodeTypeUnknown,
		Message: fmt.Sprintf("node type %q is not registered", nodeType),
	}
}

func NewUnresolvedInput(nodeId, handle string) *StatusError {
	return &StatusError{
		Code:    http.StatusUnprocessableEntity,
		Reason:  UnresolvedInput,
		Message: fmt.Sprintf("node %s references an output that was never produced for handle %q", nodeId, handle),
	}
}

func NewExecutorError(nodeType, message string) *StatusError {
	return &StatusError{
		Code:    http.StatusInternalServerError,
		Reason:  ExecutorFailure,
		Message: fmt.Sprintf("node %s failed: %s", nodeType, message),
	}
}

func NewPoisonMessage(message string) *StatusError {
	return &StatusError{
		Code:    http.StatusBadRequest,
		Reason:  PoisonMessage,
		Message: message,
	}
}

func NewTransient(message string) *StatusError {
	return &StatusError{
		Code:    http.StatusServiceUnavailable,
		Reason:  Transient,
		Message: message,
	}
}
