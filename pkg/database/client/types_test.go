/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"strings"
	"testing"

	"gotest.tools/assert"
)

func TestGetWorkflowFieldTags(t *testing.T) {
	tags := GetWorkflowFieldTags()

	assert.Equal(t, tags["id"], "id")
	assert.Equal(t, tags["userid"], "user_id")
	assert.Equal(t, tags["nextrunat"], "next_run_at")
	assert.Equal(t, tags["lastrunstatus"], "last_run_status")
}

func TestGetFieldTag(t *testing.T) {
	tags := GetWorkflowExecutionFieldTags()

	assert.Equal(t, GetFieldTag(tags, "WorkflowId"), "workflow_id")
	assert.Equal(t, GetFieldTag(tags, "CreditsConsumed"), "credits_consumed")
}

func TestGenerateCommandSkipsIgnoreTag(t *testing.T) {
	cmd := generateCommand(UserBalance{}, `INSERT INTO t (%s) VALUES (%s)`, "updated_at")

	assert.Assert(t, strings.Contains(cmd, "user_id"))
	assert.Assert(t, strings.Contains(cmd, ":credits"))
	assert.Assert(t, !strings.Contains(cmd, "updated_at"))
}

func TestGenerateCommandQuotesReservedColumns(t *testing.T) {
	cmd := generateCommand(WorkflowExecution{}, `INSERT INTO t (%s) VALUES (%s)`, "")

	assert.Assert(t, strings.Contains(cmd, `"trigger"`))
	assert.Assert(t, strings.Contains(cmd, ":trigger"))
}

func TestNormalizeOrderBy(t *testing.T) {
	assert.Equal(t, NormalizeOrderBy(TWorkflow, "name", ASC), "name asc")
	assert.Equal(t, NormalizeOrderBy(TWorkflow, "definition", ASC), "created_at asc")
	assert.Equal(t, NormalizeOrderBy(TWorkflow, "name", "sideways"), "name desc")
	assert.Equal(t, NormalizeOrderBy(TExecutionLog, "timestamp", ASC), `"timestamp" asc`)
}
