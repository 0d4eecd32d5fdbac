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
	TWorkflowVersion = "workflow_version"
)

var (
	insertVersionFormat = `INSERT INTO ` + TWorkflowVersion + ` (%s) VALUES (%s)`
)

// CreateWorkflowVersion inserts a new version inside one transaction:
// the version number is max+1 for the workflow, every other version is
// deactivated, and the workflow's active_version_id is repointed.
// A concurrent creation for the same workflow hits the unique
// (workflow_id, version_number) constraint and surfaces as AlreadyExist;
// callers may retry.
func (c *Client) CreateWorkflowVersion(ctx context.Context, version *WorkflowVersion) error {
	if version == nil || version.WorkflowId == "" {
		return flowerrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var maxNumber int
	cmd := fmt.Sprintf(`SELECT COALESCE(MAX(version_number), 0) FROM %s WHERE workflow_id = $1`, TWorkflowVersion)
	if err = tx.GetContext(ctx, &maxNumber, cmd, version.WorkflowId); err != nil {
		return err
	}
	version.VersionNumber = maxNumber + 1
	version.IsActive = true
	version.CreatedAt = dbutils.NullTime(time.Now().UTC())

	cmd = fmt.Sprintf(`UPDATE %s SET is_active = false WHERE workflow_id = $1`, TWorkflowVersion)
	if _, err = tx.ExecContext(ctx, cmd, version.WorkflowId); err != nil {
		return err
	}
	if _, err = tx.NamedExecContext(ctx, generateCommand(*version, insertVersionFormat, ""), version); err != nil {
		klog.ErrorS(err, "failed to insert workflow version", "workflowId", version.WorkflowId)
		return err
	}
	cmd = fmt.Sprintf(`UPDATE %s SET active_version_id = $1, updated_at = $2 WHERE id = $3`, TWorkflow)
	if _, err = tx.ExecContext(ctx, cmd, version.Id, time.Now().UTC(), version.WorkflowId); err != nil {
		return err
	}
	return tx.Commit()
}

// SelectWorkflowVersions retrieves multiple version records.
func (c *Client) SelectWorkflowVersions(ctx context.Context, query sqrl.Sqlizer, orderBy []string, limit, offset int) ([]*WorkflowVersion, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	sql, args, err := sqrl.Select("*").PlaceholderFormat(sqrl.Dollar).
		From(TWorkflowVersion).
		Where(query).
		OrderBy(orderBy...).
		Limit(uint64(limit)).
		Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, err
	}
	var versions []*WorkflowVersion
	err = db.SelectContext(ctx, &versions, sql, args...)
	return versions, err
}

// GetWorkflowVersion retrieves a version by ID.
func (c *Client) GetWorkflowVersion(ctx context.Context, versionId string) (*WorkflowVersion, error) {
	if versionId == "" {
		return nil, flowerrors.NewBadRequest("versionId is empty")
	}
	dbTags := GetWorkflowVersionFieldTags()
	dbSql := sqrl.Eq{GetFieldTag(dbTags, "Id"): versionId}
	versions, err := c.SelectWorkflowVersions(ctx, dbSql, nil, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, flowerrors.NewNotFound(v1.VersionKind, versionId)
	}
	return versions[0], nil
}

// GetActiveWorkflowVersion returns the single active version of a workflow.
func (c *Client) GetActiveWorkflowVersion(ctx context.Context, workflowId string) (*WorkflowVersion, error) {
	if workflowId == "" {
		return nil, flowerrors.NewBadRequest("workflowId is empty")
	}
	dbTags := GetWorkflowVersionFieldTags()
	dbSql := sqrl.And{
		sqrl.Eq{GetFieldTag(dbTags, "WorkflowId"): workflowId},
		sqrl.Eq{GetFieldTag(dbTags, "IsActive"): true},
	}
	versions, err := c.SelectWorkflowVersions(ctx, dbSql, nil, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, flowerrors.NewNoActiveVersion(workflowId)
	}
	return versions[0], nil
}
