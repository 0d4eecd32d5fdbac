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
	TUser         = "app_user"
	TGuestSession = "guest_session"
)

var (
	insertUserFormat         = `INSERT INTO ` + TUser + ` (%s) VALUES (%s)`
	insertGuestSessionFormat = `INSERT INTO ` + TGuestSession + ` (%s) VALUES (%s)`
)

// InsertUser inserts a new user row.
func (c *Client) InsertUser(ctx context.Context, user *User) error {
	if user == nil {
		return flowerrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	now := dbutils.NullTime(time.Now().UTC())
	if !user.CreatedAt.Valid {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	_, err = db.NamedExecContext(ctx, generateCommand(*user, insertUserFormat, ""), user)
	if err != nil {
		klog.ErrorS(err, "failed to insert user db", "id", user.Id)
	}
	return err
}

// GetUser retrieves a user by ID.
func (c *Client) GetUser(ctx context.Context, userId string) (*User, error) {
	if userId == "" {
		return nil, flowerrors.NewBadRequest("userId is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	cmd := fmt.Sprintf(`SELECT * FROM %s WHERE id = $1 LIMIT 1`, TUser)
	var user User
	if err = db.GetContext(ctx, &user, cmd, userId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, flowerrors.NewNotFound(v1.UserKind, userId)
		}
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user row; ownership cascades delete everything
// reachable from the user.
func (c *Client) DeleteUser(ctx context.Context, userId string) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, TUser)
	_, err = db.ExecContext(ctx, cmd, userId)
	if err != nil {
		klog.ErrorS(err, "failed to delete user db", "UserId", userId)
	}
	return err
}

// DeleteExpiredGuests removes guest users whose expiry has passed.
// Cascading deletes drop all rows the guests own. Returns the reaped count.
func (c *Client) DeleteExpiredGuests(ctx context.Context, now time.Time) (int, error) {
	db, err := c.getDB()
	if err != nil {
		return 0, err
	}
	cmd := fmt.Sprintf(`DELETE FROM %s WHERE is_guest = true AND guest_expires_at < $1`, TUser)
	res, err := db.ExecContext(ctx, cmd, now.UTC())
	if err != nil {
		klog.ErrorS(err, "failed to delete expired guests")
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// InsertGuestSession inserts a new guest session row.
func (c *Client) InsertGuestSession(ctx context.Context, session *GuestSession) error {
	if session == nil {
		return flowerrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	if !session.CreatedAt.Valid {
		session.CreatedAt = dbutils.NullTime(time.Now().UTC())
	}
	_, err = db.NamedExecContext(ctx, generateCommand(*session, insertGuestSessionFormat, ""), session)
	if err != nil {
		klog.ErrorS(err, "failed to insert guest session db", "id", session.Id)
	}
	return err
}

// DeleteExpiredGuestSessions removes orphan guest sessions past expiry.
func (c *Client) DeleteExpiredGuestSessions(ctx context.Context, now time.Time) (int, error) {
	db, err := c.getDB()
	if err != nil {
		return 0, err
	}
	cmd := fmt.Sprintf(`DELETE FROM %s WHERE expires_at < $1`, TGuestSession)
	res, err := db.ExecContext(ctx, cmd, now.UTC())
	if err != nil {
		klog.ErrorS(err, "failed to delete expired guest sessions")
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
