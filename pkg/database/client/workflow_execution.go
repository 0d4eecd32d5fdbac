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
	TWorkflowExecution = "workflow_execution"
)

var (
	insertExecutionFormat = `INSERT INTO ` + TWorkflowExecution + ` (%s) VALUES (%s)`
)

// InsertWorkflowExecution inserts a new execution row.
func (c *Client) InsertWorkflowExecution(ctx context.Context, execution *WorkflowExecution) error {
	if execution == nil {
		return flowerrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	if !execution.CreatedAt.Valid {
		execution.CreatedAt = dbutils.NullTime(time.Now().UTC())
	}
	_, err = db.NamedExecContext(ctx, generateCommand(*execution, insertExecutionFormat, ""), execution)
	if err != nil {
		klog.ErrorS(err, "failed to insert execution db", "id", execution.Id)
	}
	return err
}

// SelectWorkflowExecutions retrieves multiple execution records.
func (c *Client) SelectWorkflowExecutions(ctx context.Context, query sqrl.Sqlizer, orderBy []string, limit, offset int) ([]*WorkflowExecution, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	sql, args, err := sqrl.Select("*").PlaceholderFormat(sqrl.Dollar).
		From(TWorkflowExecution).
		Where(query).
		OrderBy(orderBy...).
		Limit(uint64(limit)).
		Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, err
	}
	var executions []*WorkflowExecution
	if c.RequestTimeout > 0 {
		ctx2, cancel := context.WithTimeout(ctx, c.RequestTimeout)
		defer cancel()
		err = db.SelectContext(ctx2, &executions, sql, args...)
	} else {
		err = db.SelectContext(ctx, &executions, sql, args...)
	}
	return executions, err
}

// CountWorkflowExecutions returns the total count of executions matching the criteria.
func (c *Client) CountWorkflowExecutions(ctx context.Context, query sqrl.Sqlizer) (int, error) {
	db, err := c.getDB()
	if err != nil {
		return 0, err
	}
	sql, args, err := sqrl.Select("COUNT(*)").PlaceholderFormat(sqrl.Dollar).From(TWorkflowExecution).Where(query).ToSql()
	if err != nil {
		return 0, err
	}
	var cnt int
	err = db.GetContext(ctx, &cnt, sql, args...)
	return cnt, err
}

// GetWorkflowExecution retrieves an execution by ID scoped to its owner.
func (c *Client) GetWorkflowExecution(ctx context.Context, executionId, userId string) (*WorkflowExecution, error) {
	if executionId == "" {
		return nil, flowerrors.NewBadRequest("executionId is empty")
	}
	dbTags := GetWorkflowExecutionFieldTags()
	query := sqrl.And{sqrl.Eq{GetFieldTag(dbTags, "Id"): executionId}}
	if userId != "" {
		query = append(query, sqrl.Eq{GetFieldTag(dbTags, "UserId"): userId})
	}
	executions, err := c.SelectWorkflowExecutions(ctx, query, nil, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(executions) == 0 {
		return nil, flowerrors.NewNotFound(v1.ExecutionKind, executionId)
	}
	return executions[0], nil
}

// MarkExecutionStarted transitions an execution to RUNNING and stamps started_at.
func (c *Client) MarkExecutionStarted(ctx context.Context, executionId string, startedAt time.Time) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf(`UPDATE %s SET status=$1, started_at=$2 WHERE id=$3`, TWorkflowExecution)
	_, err = db.ExecContext(ctx, cmd, string(v1.ExecutionRunning), startedAt.UTC(), executionId)
	if err != nil {
		klog.ErrorS(err, "failed to update execution db", "ExecutionId", executionId)
	}
	return err
}

// MarkExecutionFinished records a terminal status, completion time and the
// aggregate credits consumed by the run.
func (c *Client) MarkExecutionFinished(ctx context.Context, executionId string, status v1.ExecutionStatus, creditsConsumed int) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf(`UPDATE %s SET status=$1, completed_at=$2, credits_consumed=$3 WHERE id=$4`, TWorkflowExecution)
	_, err = db.ExecContext(ctx, cmd, string(status), time.Now().UTC(), creditsConsumed, executionId)
	if err != nil {
		klog.ErrorS(err, "failed to update execution db", "ExecutionId", executionId)
	}
	return err
}

// CancelExecution sets CANCELED if the execution is still PENDING or RUNNING.
func (c *Client) CancelExecution(ctx context.Context, executionId, userId string) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf(`UPDATE %s SET status=$1, completed_at=$2
		WHERE id=$3 AND user_id=$4 AND status IN ($5, $6)`, TWorkflowExecution)
	res, err := db.ExecContext(ctx, cmd, string(v1.ExecutionCanceled), time.Now().UTC(),
		executionId, userId, string(v1.ExecutionPending), string(v1.ExecutionRunning))
	if err != nil {
		klog.ErrorS(err, "failed to cancel execution", "ExecutionId", executionId)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return flowerrors.NewNotFound(v1.ExecutionKind, executionId)
	}
	return nil
}
