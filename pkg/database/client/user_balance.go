/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"k8s.io/klog/v2"

	v1 "github.com/Memo-Aldu/flow-builder/pkg/apis/v1"
	dbutils "github.com/Memo-Aldu/flow-builder/pkg/database/utils"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

const (
	TUserBalance  = "user_balance"
	TUserPurchase = "user_purchase"
)

var (
	insertBalanceFormat  = `INSERT INTO ` + TUserBalance + ` (%s) VALUES (%s)`
	insertPurchaseFormat = `INSERT INTO ` + TUserPurchase + ` (%s) VALUES (%s)`
)

// GetUserBalance retrieves the balance row for a user.
func (c *Client) GetUserBalance(ctx context.Context, userId string) (*UserBalance, error) {
	if userId == "" {
		return nil, flowerrors.NewBadRequest("userId is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	cmd := fmt.Sprintf(`SELECT * FROM %s WHERE user_id = $1 LIMIT 1`, TUserBalance)
	var balance UserBalance
	if err = db.GetContext(ctx, &balance, cmd, userId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, flowerrors.NewNotFound(v1.BalanceKind, userId)
		}
		return nil, err
	}
	return &balance, nil
}

// InitUserBalance creates the balance row for a new user.
func (c *Client) InitUserBalance(ctx context.Context, userId string, credits int) error {
	if userId == "" {
		return flowerrors.NewBadRequest("userId is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	balance := UserBalance{UserId: userId, Credits: credits, UpdatedAt: dbutils.NullTime(time.Now().UTC())}
	_, err = db.NamedExecContext(ctx, generateCommand(balance, insertBalanceFormat, ""), balance)
	if err != nil {
		klog.ErrorS(err, "failed to insert balance db", "userId", userId)
	}
	return err
}

// DebitUserCredits atomically subtracts amount from the user's balance.
// The balance row is locked for the duration of the transaction; when the
// balance cannot cover the amount the transaction makes no change and the
// call returns InsufficientCredits.
func (c *Client) DebitUserCredits(ctx context.Context, userId string, amount int) error {
	if userId == "" || amount < 0 {
		return flowerrors.NewBadRequest("invalid debit request")
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

	var balance UserBalance
	cmd := fmt.Sprintf(`SELECT * FROM %s WHERE user_id = $1 FOR UPDATE`, TUserBalance)
	if err = tx.GetContext(ctx, &balance, cmd, userId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return flowerrors.NewNotFound(v1.BalanceKind, userId)
		}
		return err
	}
	if balance.Credits < amount {
		return flowerrors.NewInsufficientCredits(userId, amount, balance.Credits)
	}
	cmd = fmt.Sprintf(`UPDATE %s SET credits = credits - $1, updated_at = $2 WHERE user_id = $3`, TUserBalance)
	if _, err = tx.ExecContext(ctx, cmd, amount, time.Now().UTC(), userId); err != nil {
		return err
	}
	return tx.Commit()
}

// CreditUserCredits adds credits to a balance and records the purchase in
// the same transaction.
func (c *Client) CreditUserCredits(ctx context.Context, userId string, amount int, purchase *UserPurchase) error {
	if userId == "" || amount <= 0 {
		return flowerrors.NewBadRequest("invalid credit request")
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

	cmd := fmt.Sprintf(`UPDATE %s SET credits = credits + $1, updated_at = $2 WHERE user_id = $3`, TUserBalance)
	res, err := tx.ExecContext(ctx, cmd, amount, time.Now().UTC(), userId)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		balance := UserBalance{UserId: userId, Credits: amount, UpdatedAt: dbutils.NullTime(time.Now().UTC())}
		if _, err = tx.NamedExecContext(ctx, generateCommand(balance, insertBalanceFormat, ""), balance); err != nil {
			return err
		}
	}
	if purchase != nil {
		purchase.UserId = userId
		purchase.CreatedAt = dbutils.NullTime(time.Now().UTC())
		if _, err = tx.NamedExecContext(ctx, generateCommand(*purchase, insertPurchaseFormat, ""), purchase); err != nil {
			klog.ErrorS(err, "failed to insert purchase db", "userId", userId)
			return err
		}
	}
	return tx.Commit()
}

// SelectUserPurchases lists a user's purchases, newest first.
func (c *Client) SelectUserPurchases(ctx context.Context, userId string, limit, offset int) ([]*UserPurchase, error) {
	if userId == "" {
		return nil, flowerrors.NewBadRequest("userId is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	cmd := fmt.Sprintf(`SELECT * FROM %s WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, TUserPurchase)
	var purchases []*UserPurchase
	err = db.SelectContext(ctx, &purchases, cmd, userId, limit, offset)
	return purchases, err
}
