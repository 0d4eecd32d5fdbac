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
	TExecutionPhase = "execution_phase"
)

var (
	insertPhaseFormat = `INSERT INTO ` + TExecutionPhase + ` (%s) VALUES (%s)`
)

// InsertExecutionPhase inserts a new phase row.
func (c *Client) InsertExecutionPhase(ctx context.Context, phase *ExecutionPhase) error {
	if phase == nil {
		return flowerrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	_, err = db.NamedExecContext(ctx, generateCommand(*phase, insertPhaseFormat, ""), phase)
	if err != nil {
		klog.ErrorS(err, "failed to insert phase db", "id", phase.Id)
	}
	return err
}

// MarkPhaseRunning transitions a phase to RUNNING and stamps started_at.
func (c *Client) MarkPhaseRunning(ctx context.Context, phaseId string, startedAt time.Time) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf(`UPDATE %s SET status=$1, started_at=$2 WHERE id=$3`, TExecutionPhase)
	_, err = db.ExecContext(ctx, cmd, string(v1.PhaseRunning), startedAt.UTC(), phaseId)
	if err != nil {
		klog.ErrorS(err, "failed to update phase db", "PhaseId", phaseId)
	}
	return err
}

// FinishExecutionPhase records the terminal phase state along with outputs
// and the credits debited for the node.
func (c *Client) FinishExecutionPhase(ctx context.Context, phaseId string, status v1.PhaseStatus, outputs string, creditsConsumed int) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf(`UPDATE %s SET status=$1, outputs=$2, credits_consumed=$3, completed_at=$4 WHERE id=$5`, TExecutionPhase)
	_, err = db.ExecContext(ctx, cmd, string(status), dbutils.NullString(outputs), creditsConsumed, time.Now().UTC(), phaseId)
	if err != nil {
		klog.ErrorS(err, "failed to update phase db", "PhaseId", phaseId)
	}
	return err
}

// SelectExecutionPhases retrieves multiple phase records.
func (c *Client) SelectExecutionPhases(ctx context.Context, query sqrl.Sqlizer, orderBy []string, limit, offset int) ([]*ExecutionPhase, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	sql, args, err := sqrl.Select("*").PlaceholderFormat(sqrl.Dollar).
		From(TExecutionPhase).
		Where(query).
		OrderBy(orderBy...).
		Limit(uint64(limit)).
		Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, err
	}
	var phases []*ExecutionPhase
	err = db.SelectContext(ctx, &phases, sql, args...)
	return phases, err
}

// ListExecutionPhases returns the phases of one execution in plan order.
func (c *Client) ListExecutionPhases(ctx context.Context, executionId string) ([]*ExecutionPhase, error) {
	if executionId == "" {
		return nil, flowerrors.NewBadRequest("executionId is empty")
	}
	dbTags := GetExecutionPhaseFieldTags()
	dbSql := sqrl.Eq{GetFieldTag(dbTags, "WorkflowExecutionId"): executionId}
	return c.SelectExecutionPhases(ctx, dbSql, []string{NormalizeOrderBy(TExecutionPhase, "number", ASC)}, 1000, 0)
}
