/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gotest.tools/assert"
)

// lazyHandles opens unconnected pools; sql.Open does not dial.
func lazyHandles(t *testing.T) (*sqlx.DB, *sql.DB, *gorm.DB) {
	t.Helper()
	db, err := sqlx.Open("postgres", "host=127.0.0.1 port=1 sslmode=disable")
	assert.NilError(t, err)
	gormConn, err := sql.Open("postgres", "host=127.0.0.1 port=1 sslmode=disable")
	assert.NilError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: gormConn}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	assert.NilError(t, err)
	return db, gormConn, gormDB
}

func TestCloseReleasesBothPools(t *testing.T) {
	db, gormConn, gormDB := lazyHandles(t)
	c := &Client{db: db, gorm: gormDB}

	c.Close()

	assert.ErrorContains(t, db.Ping(), "closed")
	assert.ErrorContains(t, gormConn.Ping(), "closed")
}

func TestCloseIsNilSafe(t *testing.T) {
	var c *Client
	c.Close()
	(&Client{}).Close()
}
