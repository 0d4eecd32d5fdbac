/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"context"

	sqrl "github.com/Masterminds/squirrel"
	"k8s.io/klog/v2"

	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

const (
	TExecutionLog = "execution_log"
)

var (
	insertLogFormat = `INSERT INTO ` + TExecutionLog + ` (%s) VALUES (%s)`
)

// InsertExecutionLogs flushes a batch of buffered log lines for one phase.
// Lines are inserted in slice order so timestamps stay monotonic per phase.
func (c *Client) InsertExecutionLogs(ctx context.Context, logs []*ExecutionLog) error {
	if len(logs) == 0 {
		return nil
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	rows := make([]ExecutionLog, 0, len(logs))
	for _, l := range logs {
		if l == nil {
			return flowerrors.NewBadRequest("the input is empty")
		}
		rows = append(rows, *l)
	}
	_, err = db.NamedExecContext(ctx, generateCommand(rows[0], insertLogFormat, ""), rows)
	if err != nil {
		klog.ErrorS(err, "failed to insert execution logs", "count", len(rows))
	}
	return err
}

// SelectExecutionLogs retrieves log records for a phase in append order.
func (c *Client) SelectExecutionLogs(ctx context.Context, phaseId string, limit, offset int) ([]*ExecutionLog, error) {
	if phaseId == "" {
		return nil, flowerrors.NewBadRequest("phaseId is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	dbTags := GetExecutionLogFieldTags()
	sql, args, err := sqrl.Select("*").PlaceholderFormat(sqrl.Dollar).
		From(TExecutionLog).
		Where(sqrl.Eq{GetFieldTag(dbTags, "ExecutionPhaseId"): phaseId}).
		OrderBy(NormalizeOrderBy(TExecutionLog, "timestamp", ASC)).
		Limit(uint64(limit)).
		Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, err
	}
	var logs []*ExecutionLog
	err = db.SelectContext(ctx, &logs, sql, args...)
	return logs, err
}
