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
	TCredential = "credential"
	TDbSecret   = "db_secret"

	// DBSecretPrefix tags secret_refs whose payload lives in the local
	// encrypted store instead of the external secret manager.
	DBSecretPrefix = "db:"
)

var (
	insertCredentialFormat = `INSERT INTO ` + TCredential + ` (%s) VALUES (%s)`
)

// InsertCredential inserts a new credential row. The row carries only the
// secret reference; plaintext never reaches this table.
func (c *Client) InsertCredential(ctx context.Context, credential *Credential) error {
	if credential == nil {
		return flowerrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	if !credential.CreatedAt.Valid {
		credential.CreatedAt = dbutils.NullTime(time.Now().UTC())
	}
	_, err = db.NamedExecContext(ctx, generateCommand(*credential, insertCredentialFormat, ""), credential)
	if err != nil {
		klog.ErrorS(err, "failed to insert credential db", "id", credential.Id)
	}
	return err
}

// GetCredential retrieves a credential by ID scoped to its owner.
func (c *Client) GetCredential(ctx context.Context, credentialId, userId string) (*Credential, error) {
	if credentialId == "" {
		return nil, flowerrors.NewBadRequest("credentialId is empty")
	}
	dbTags := GetCredentialFieldTags()
	query := sqrl.And{sqrl.Eq{GetFieldTag(dbTags, "Id"): credentialId}}
	if userId != "" {
		query = append(query, sqrl.Eq{GetFieldTag(dbTags, "UserId"): userId})
	}
	credentials, err := c.SelectCredentials(ctx, query, nil, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(credentials) == 0 {
		return nil, flowerrors.NewNotFound(v1.CredKind, credentialId)
	}
	return credentials[0], nil
}

// SelectCredentials retrieves multiple credential records.
func (c *Client) SelectCredentials(ctx context.Context, query sqrl.Sqlizer, orderBy []string, limit, offset int) ([]*Credential, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	sql, args, err := sqrl.Select("*").PlaceholderFormat(sqrl.Dollar).
		From(TCredential).
		Where(query).
		OrderBy(orderBy...).
		Limit(uint64(limit)).
		Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, err
	}
	var credentials []*Credential
	err = db.SelectContext(ctx, &credentials, sql, args...)
	return credentials, err
}

// DeleteCredential removes a credential row scoped to its owner.
func (c *Client) DeleteCredential(ctx context.Context, credentialId, userId string) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf(`DELETE FROM %s WHERE id=$1 AND user_id=$2`, TCredential)
	_, err = db.ExecContext(ctx, cmd, credentialId, userId)
	if err != nil {
		klog.ErrorS(err, "failed to delete credential db", "CredentialId", credentialId)
	}
	return err
}

// GetDbSecret loads the encrypted payload for a db-tagged secret_ref.
func (c *Client) GetDbSecret(ctx context.Context, secretId string) (string, error) {
	if secretId == "" {
		return "", flowerrors.NewBadRequest("secretId is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return "", err
	}
	cmd := fmt.Sprintf(`SELECT encrypted_value FROM %s WHERE id = $1 LIMIT 1`, TDbSecret)
	var encrypted string
	if err = db.GetContext(ctx, &encrypted, cmd, secretId); err != nil {
		return "", flowerrors.NewNotFound(v1.CredKind, secretId).WithError(err)
	}
	return encrypted, nil
}

// PutDbSecret stores an encrypted payload under a db-tagged secret id.
func (c *Client) PutDbSecret(ctx context.Context, secretId, encrypted string) error {
	if secretId == "" {
		return flowerrors.NewBadRequest("secretId is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf(`INSERT INTO %s (id, encrypted_value, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET encrypted_value = EXCLUDED.encrypted_value`, TDbSecret)
	_, err = db.ExecContext(ctx, cmd, secretId, encrypted, time.Now().UTC())
	if err != nil {
		klog.ErrorS(err, "failed to store db secret", "SecretId", secretId)
	}
	return err
}

// DeleteDbSecret removes an encrypted payload.
func (c *Client) DeleteDbSecret(ctx context.Context, secretId string) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, TDbSecret)
	_, err = db.ExecContext(ctx, cmd, secretId)
	return err
}
