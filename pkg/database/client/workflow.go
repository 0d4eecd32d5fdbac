/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"context"
	"fmt"
	"time"

	sqrl "github.com/Masterminds/squirrel"
	"k8s.io/klog/v2"

	v1 "github.com/Memo-Aldu/flow-builder/pkg/apis/v1"
	dbutils "github.com/Memo-Aldu/flow-builder/pkg/database/utils"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

const (
	TWorkflow = "workflow"
)

var (
	insertWorkflowFormat = `INSERT INTO ` + TWorkflow + ` (%s) VALUES (%s)`
	updateWorkflowCmd    = fmt.Sprintf(`UPDATE %s
		SET name = :name,
		    description = :description,
		    status = :status,
		    definition = :definition,
		    cron = :cron,
		    credits_cost = :credits_cost,
		    active_version_id = :active_version_id,
		    last_run_id = :last_run_id,
		    last_run_status = :last_run_status,
		    last_run_at = :last_run_at,
		    next_run_at = :next_run_at,
		    updated_at = :updated_at
		WHERE id = :id`, TWorkflow)
)

// InsertWorkflow inserts a new workflow row.
func (c *Client) InsertWorkflow(ctx context.Context, workflow *Workflow) error {
	if workflow == nil {
		return flowerrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	_, err = db.NamedExecContext(ctx, generateCommand(*workflow, insertWorkflowFormat, ""), workflow)
	if err != nil {
		klog.ErrorS(err, "failed to insert workflow db", "id", workflow.Id)
	}
	return err
}

// UpdateWorkflow overwrites the mutable columns of a workflow row.
func (c *Client) UpdateWorkflow(ctx context.Context, workflow *Workflow) error {
	if workflow == nil {
		return flowerrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	workflow.UpdatedAt = dbutils.NullTime(time.Now().UTC())
	_, err = db.NamedExecContext(ctx, updateWorkflowCmd, workflow)
	if err != nil {
		klog.ErrorS(err, "failed to update workflow db", "id", workflow.Id)
	}
	return err
}

// SelectWorkflows retrieves multiple workflow records.
func (c *Client) SelectWorkflows(ctx context.Context, query sqrl.Sqlizer, orderBy []string, limit, offset int) ([]*Workflow, error) {
	startTime := time.Now().UTC()
	defer func() {
		if query != nil {
			strQuery := dbutils.CvtToSqlStr(query)
			klog.Infof("select workflow, query: %s, orderBy: %v, limit: %d, offset: %d, cost (%v)",
				strQuery, orderBy, limit, offset, time.Since(startTime))
		}
	}()
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}

	sql, args, err := sqrl.Select("*").PlaceholderFormat(sqrl.Dollar).
		From(TWorkflow).
		Where(query).
		OrderBy(orderBy...).
		Limit(uint64(limit)).
		Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, err
	}

	var workflows []*Workflow
	if c.RequestTimeout > 0 {
		ctx2, cancel := context.WithTimeout(ctx, c.RequestTimeout)
		defer cancel()
		err = db.SelectContext(ctx2, &workflows, sql, args...)
	} else {
		err = db.SelectContext(ctx, &workflows, sql, args...)
	}
	return workflows, err
}

// CountWorkflows returns the total count of workflows matching the criteria.
func (c *Client) CountWorkflows(ctx context.Context, query sqrl.Sqlizer) (int, error) {
	db, err := c.getDB()
	if err != nil {
		return 0, err
	}
	sql, args, err := sqrl.Select("COUNT(*)").PlaceholderFormat(sqrl.Dollar).From(TWorkflow).Where(query).ToSql()
	if err != nil {
		return 0, err
	}
	var cnt int
	err = db.GetContext(ctx, &cnt, sql, args...)
	return cnt, err
}

// GetWorkflow retrieves a workflow by ID.
func (c *Client) GetWorkflow(ctx context.Context, workflowId string) (*Workflow, error) {
	if workflowId == "" {
		return nil, flowerrors.NewBadRequest("workflowId is empty")
	}
	dbTags := GetWorkflowFieldTags()
	dbSql := sqrl.Eq{GetFieldTag(dbTags, "Id"): workflowId}
	workflows, err := c.SelectWorkflows(ctx, dbSql, nil, 1, 0)
	if err != nil {
		klog.ErrorS(err, "failed to select workflow", "sql", dbutils.CvtToSqlStr(dbSql))
		return nil, err
	}
	if len(workflows) == 0 {
		return nil, flowerrors.NewNotFound(v1.WorkflowKind, workflowId)
	}
	return workflows[0], nil
}

// GetWorkflowForUser retrieves a workflow by ID scoped to its owner.
func (c *Client) GetWorkflowForUser(ctx context.Context, workflowId, userId string) (*Workflow, error) {
	if workflowId == "" || userId == "" {
		return nil, flowerrors.NewBadRequest("workflowId or userId is empty")
	}
	dbTags := GetWorkflowFieldTags()
	dbSql := sqrl.And{
		sqrl.Eq{GetFieldTag(dbTags, "Id"): workflowId},
		sqrl.Eq{GetFieldTag(dbTags, "UserId"): userId},
	}
	workflows, err := c.SelectWorkflows(ctx, dbSql, nil, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(workflows) == 0 {
		return nil, flowerrors.NewNotFound(v1.WorkflowKind, workflowId)
	}
	return workflows[0], nil
}

// GetDueWorkflows returns published workflows whose next_run_at has passed.
func (c *Client) GetDueWorkflows(ctx context.Context, now time.Time) ([]*Workflow, error) {
	dbTags := GetWorkflowFieldTags()
	dbSql := sqrl.And{
		sqrl.Eq{GetFieldTag(dbTags, "Status"): string(v1.WorkflowPublished)},
		sqrl.NotEq{GetFieldTag(dbTags, "NextRunAt"): nil},
		sqrl.LtOrEq{GetFieldTag(dbTags, "NextRunAt"): now.UTC()},
	}
	return c.SelectWorkflows(ctx, dbSql, []string{GetFieldTag(dbTags, "NextRunAt") + " " + ASC}, 1000, 0)
}

// PatchWorkflowRun updates the last-run bookkeeping columns and next_run_at.
// The workflow status column is untouched.
func (c *Client) PatchWorkflowRun(ctx context.Context, workflow *Workflow) error {
	if workflow == nil {
		return flowerrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf(`UPDATE %s
		SET last_run_id = :last_run_id,
		    last_run_status = :last_run_status,
		    last_run_at = :last_run_at,
		    next_run_at = :next_run_at,
		    updated_at = :updated_at
		WHERE id = :id`, TWorkflow)
	workflow.UpdatedAt = dbutils.NullTime(time.Now().UTC())
	_, err = db.NamedExecContext(ctx, cmd, workflow)
	if err != nil {
		klog.ErrorS(err, "failed to patch workflow run state", "id", workflow.Id)
	}
	return err
}

// SetWorkflowNextRun updates only next_run_at.
func (c *Client) SetWorkflowNextRun(ctx context.Context, workflowId string, nextRunAt *time.Time) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf(`UPDATE %s SET next_run_at=$1, updated_at=$2 WHERE id=$3`, TWorkflow)
	_, err = db.ExecContext(ctx, cmd, dbutils.NullTimePtr(nextRunAt), time.Now().UTC(), workflowId)
	if err != nil {
		klog.ErrorS(err, "failed to update workflow db", "WorkflowId", workflowId)
		return err
	}
	return nil
}

// SetWorkflowStatus transitions a workflow between lifecycle states and keeps
// the next_run_at invariant: non-null only while published with a cron.
func (c *Client) SetWorkflowStatus(ctx context.Context, workflowId string, status v1.WorkflowStatus, nextRunAt *time.Time) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	if status != v1.WorkflowPublished {
		nextRunAt = nil
	}
	cmd := fmt.Sprintf(`UPDATE %s SET status=$1, next_run_at=$2, updated_at=$3 WHERE id=$4`, TWorkflow)
	_, err = db.ExecContext(ctx, cmd, string(status), dbutils.NullTimePtr(nextRunAt), time.Now().UTC(), workflowId)
	if err != nil {
		klog.ErrorS(err, "failed to update workflow db", "WorkflowId", workflowId)
		return err
	}
	return nil
}

// DeleteWorkflow removes a workflow row; versions and executions cascade.
func (c *Client) DeleteWorkflow(ctx context.Context, workflowId, userId string) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf(`DELETE FROM %s WHERE id=$1 AND user_id=$2`, TWorkflow)
	_, err = db.ExecContext(ctx, cmd, workflowId, userId)
	if err != nil {
		klog.ErrorS(err, "failed to delete workflow db", "WorkflowId", workflowId)
	}
	return err
}
