/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/lib/pq"
)

const (
	DESC = "desc"
	ASC  = "asc"

	CreatedAt = "created_at"
	UpdatedAt = "updated_at"
)

type User struct {
	Id             string         `db:"id"`
	Email          sql.NullString `db:"email"`
	Username       sql.NullString `db:"username"`
	IsGuest        bool           `db:"is_guest"`
	GuestExpiresAt pq.NullTime    `db:"guest_expires_at"`
	CreatedAt      pq.NullTime    `db:"created_at"`
	UpdatedAt      pq.NullTime    `db:"updated_at"`
}

// GetUserFieldTags returns the UserFieldTags value.
func GetUserFieldTags() map[string]string {
	u := User{}
	return getFieldTags(u)
}

type GuestSession struct {
	Id        string      `db:"id"`
	UserId    string      `db:"user_id"`
	Token     string      `db:"token"`
	ExpiresAt pq.NullTime `db:"expires_at"`
	CreatedAt pq.NullTime `db:"created_at"`
}

// GetGuestSessionFieldTags returns the GuestSessionFieldTags value.
func GetGuestSessionFieldTags() map[string]string {
	s := GuestSession{}
	return getFieldTags(s)
}

type Workflow struct {
	Id              string         `db:"id"`
	UserId          string         `db:"user_id"`
	Name            string         `db:"name"`
	Description     sql.NullString `db:"description"`
	Status          string         `db:"status"`
	Definition      sql.NullString `db:"definition"`
	Cron            sql.NullString `db:"cron"`
	CreditsCost     sql.NullInt64  `db:"credits_cost"`
	ActiveVersionId sql.NullString `db:"active_version_id"`
	LastRunId       sql.NullString `db:"last_run_id"`
	LastRunStatus   sql.NullString `db:"last_run_status"`
	LastRunAt       pq.NullTime    `db:"last_run_at"`
	NextRunAt       pq.NullTime    `db:"next_run_at"`
	CreatedAt       pq.NullTime    `db:"created_at"`
	UpdatedAt       pq.NullTime    `db:"updated_at"`
}

// GetWorkflowFieldTags returns the WorkflowFieldTags value.
func GetWorkflowFieldTags() map[string]string {
	w := Workflow{}
	return getFieldTags(w)
}

type WorkflowVersion struct {
	Id              string         `db:"id"`
	WorkflowId      string         `db:"workflow_id"`
	VersionNumber   int            `db:"version_number"`
	Definition      string         `db:"definition"`
	ExecutionPlan   string         `db:"execution_plan"`
	IsActive        bool           `db:"is_active"`
	ParentVersionId sql.NullString `db:"parent_version_id"`
	CreatedBy       sql.NullString `db:"created_by"`
	CreatedAt       pq.NullTime    `db:"created_at"`
}

// GetWorkflowVersionFieldTags returns the WorkflowVersionFieldTags value.
func GetWorkflowVersionFieldTags() map[string]string {
	v := WorkflowVersion{}
	return getFieldTags(v)
}

type WorkflowExecution struct {
	Id              string        `db:"id"`
	WorkflowId      string        `db:"workflow_id"`
	UserId          string        `db:"user_id"`
	Trigger         string        `db:"trigger"`
	Status          string        `db:"status"`
	CreatedAt       pq.NullTime   `db:"created_at"`
	StartedAt       pq.NullTime   `db:"started_at"`
	CompletedAt     pq.NullTime   `db:"completed_at"`
	CreditsConsumed sql.NullInt64 `db:"credits_consumed"`
}

// GetWorkflowExecutionFieldTags returns the WorkflowExecutionFieldTags value.
func GetWorkflowExecutionFieldTags() map[string]string {
	e := WorkflowExecution{}
	return getFieldTags(e)
}

type ExecutionPhase struct {
	Id                  string         `db:"id"`
	WorkflowExecutionId string         `db:"workflow_execution_id"`
	UserId              string         `db:"user_id"`
	Number              int            `db:"number"`
	Name                string         `db:"name"`
	Status              string         `db:"status"`
	StartedAt           pq.NullTime    `db:"started_at"`
	CompletedAt         pq.NullTime    `db:"completed_at"`
	Node                sql.NullString `db:"node"`
	Inputs              sql.NullString `db:"inputs"`
	Outputs             sql.NullString `db:"outputs"`
	CreditsConsumed     sql.NullInt64  `db:"credits_consumed"`
}

// GetExecutionPhaseFieldTags returns the ExecutionPhaseFieldTags value.
func GetExecutionPhaseFieldTags() map[string]string {
	p := ExecutionPhase{}
	return getFieldTags(p)
}

type ExecutionLog struct {
	Id               string      `db:"id"`
	ExecutionPhaseId string      `db:"execution_phase_id"`
	LogLevel         string      `db:"log_level"`
	Message          string      `db:"message"`
	Timestamp        pq.NullTime `db:"timestamp"`
}

// GetExecutionLogFieldTags returns the ExecutionLogFieldTags value.
func GetExecutionLogFieldTags() map[string]string {
	l := ExecutionLog{}
	return getFieldTags(l)
}

type UserBalance struct {
	UserId    string      `db:"user_id"`
	Credits   int         `db:"credits"`
	UpdatedAt pq.NullTime `db:"updated_at"`
}

// GetUserBalanceFieldTags returns the UserBalanceFieldTags value.
func GetUserBalanceFieldTags() map[string]string {
	b := UserBalance{}
	return getFieldTags(b)
}

type UserPurchase struct {
	Id          string         `db:"id"`
	UserId      string         `db:"user_id"`
	StripeId    sql.NullString `db:"stripe_id"`
	Description sql.NullString `db:"description"`
	Amount      int            `db:"amount"`
	Currency    string         `db:"currency"`
	CreatedAt   pq.NullTime    `db:"created_at"`
}

// GetUserPurchaseFieldTags returns the UserPurchaseFieldTags value.
func GetUserPurchaseFieldTags() map[string]string {
	p := UserPurchase{}
	return getFieldTags(p)
}

type Credential struct {
	Id         string      `db:"id"`
	UserId     string      `db:"user_id"`
	Name       string      `db:"name"`
	SecretRef  string      `db:"secret_ref"`
	IsDbSecret bool        `db:"is_db_secret"`
	CreatedAt  pq.NullTime `db:"created_at"`
}

// GetCredentialFieldTags returns the CredentialFieldTags value.
func GetCredentialFieldTags() map[string]string {
	c := Credential{}
	return getFieldTags(c)
}

// getFieldTags retrieves FieldTags for internal use.
func getFieldTags(obj interface{}) map[string]string {
	result := make(map[string]string)
	t := reflect.TypeOf(obj)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		result[strings.ToLower(field.Name)] = field.Tag.Get("db")
	}
	return result
}

// generateCommand generates SQL command string using reflection
// Iterates through struct fields and builds column and value lists
// Skips fields with specified ignoreTag
// Returns formatted SQL command with columns and values
func generateCommand(obj interface{}, format, ignoreTag string) string {
	t := reflect.TypeOf(obj)
	columns := make([]string, 0, t.NumField())
	values := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("db")
		if tag == ignoreTag {
			continue
		}
		columns = append(columns, quoteColumn(tag))
		values = append(values, fmt.Sprintf(":%s", tag))
	}
	cmd := fmt.Sprintf(format, strings.Join(columns, ", "), strings.Join(values, ", "))
	return cmd
}

// quoteColumn protects reserved identifiers such as "trigger" and "number".
func quoteColumn(tag string) string {
	switch tag {
	case "trigger", "number", "timestamp":
		return fmt.Sprintf("%q", tag)
	}
	return tag
}

// GetFieldTag returns the FieldTag value.
func GetFieldTag(tags map[string]string, name string) string {
	name = strings.ToLower(name)
	return tags[name]
}

// sortFields enumerates the sortable columns per entity for listings; anything
// outside the set falls back to created_at.
var sortFields = map[string]map[string]bool{
	TWorkflow:          {"name": true, "status": true, "created_at": true, "updated_at": true, "next_run_at": true},
	TWorkflowExecution: {"status": true, "created_at": true, "started_at": true, "completed_at": true},
	TExecutionPhase:    {"number": true, "status": true, "started_at": true, "completed_at": true},
	TExecutionLog:      {"timestamp": true, "log_level": true},
	TCredential:        {"name": true, "created_at": true},
	TUserPurchase:      {"created_at": true, "amount": true},
}

// NormalizeOrderBy validates a (sort, order) pair for the given table and
// returns the ORDER BY clause entry to use.
func NormalizeOrderBy(table, sort, order string) string {
	fields := sortFields[table]
	if fields == nil || !fields[sort] {
		sort = CreatedAt
	}
	if order != ASC && order != DESC {
		order = DESC
	}
	return quoteColumn(sort) + " " + order
}
