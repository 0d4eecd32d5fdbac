/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/Memo-Aldu/flow-builder/pkg/config"
	"github.com/Memo-Aldu/flow-builder/pkg/database/utils"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
	"github.com/Memo-Aldu/flow-builder/pkg/utils/backoff"
)

var (
	once     sync.Once
	instance *Client
)

// Client represents a database client that manages both sqlx and gorm database connections.
// It encapsulates the database configuration and provides methods to interact with the database.
type Client struct {
	db              *sqlx.DB // sqlx database instance
	gorm            *gorm.DB // gorm ORM database instance
	*utils.DBConfig          // Embedded database configuration
}

// NewClient creates a singleton instance of the database Client.
// It initializes the database configuration from configuration,
// validates the parameters, establishes connections using both sqlx and gorm.
// The initialization happens only once even if called multiple times.
func NewClient() *Client {
	once.Do(func() {
		cfg := configFromEnv()
		c, err := connect(cfg)
		if err != nil {
			klog.ErrorS(err, "failed to init db client")
			return
		}
		instance = c
		klog.Infof("init db-client successfully! conn-timeout: %d(s), request-timeout: %d(s)",
			cfg.ConnectTimeout, config.GetDBRequestTimeoutSecond())
	})
	return instance
}

// NewTickClient creates a non-singleton client for short-lived tick processes.
// The pool is capped at a single connection and the caller must Close the
// client when the tick completes, so no connection outlives the invocation.
func NewTickClient() (*Client, error) {
	cfg := configFromEnv()
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1
	cfg.MaxIdleTime = time.Second
	return connect(cfg)
}

func configFromEnv() *utils.DBConfig {
	return &utils.DBConfig{
		DBName:         config.GetDBName(),
		Username:       config.GetDBUser(),
		Password:       config.GetDBPassword(),
		Host:           config.GetDBHost(),
		Port:           config.GetDBPort(),
		SSLMode:        config.GetDBSslMode(),
		MaxOpenConns:   config.GetDBMaxOpenConns(),
		MaxIdleConns:   config.GetDBMaxIdleConns(),
		MaxLifetime:    time.Duration(config.GetDBMaxLifetimeSecond()) * time.Second,
		MaxIdleTime:    time.Duration(config.GetDBMaxIdleTimeSecond()) * time.Second,
		ConnectTimeout: config.GetDBConnectTimeoutSecond(),
		RequestTimeout: time.Duration(config.GetDBRequestTimeoutSecond()) * time.Second,
	}
}

func connect(cfg *utils.DBConfig) (*Client, error) {
	if err := checkParams(cfg); err != nil {
		return nil, err
	}
	db, err := utils.Connect(cfg, utils.PgDriver)
	if err != nil {
		return nil, err
	}
	// The database may still be coming up when a container starts; retry the
	// initial ping instead of failing the whole process.
	if err = backoff.Retry(db.Ping, time.Duration(cfg.ConnectTimeout)*time.Second, 5*time.Second); err != nil {
		return nil, fmt.Errorf("failed to ping db: %v", err)
	}
	gormDb, err := utils.ConnectGorm(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{db: db, DBConfig: cfg, gorm: gormDb}, nil
}

// Close releases both connection pools so nothing outlives the client.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			klog.ErrorS(err, "failed to close db connection")
		}
	}
	if c.gorm != nil {
		sqlDB, err := c.gorm.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			klog.ErrorS(err, "failed to close gorm db connection")
		}
	}
}

// getDB retrieves DB for internal use.
func (c *Client) getDB() (*sqlx.DB, error) {
	if c == nil || c.db == nil {
		return nil, flowerrors.NewInternalError("The client of db has not been initialized")
	}
	return c.db.Unsafe(), nil
}

// checkParams checks Params and returns the result.
func checkParams(cfg *utils.DBConfig) error {
	var errs []error
	if cfg.DBName == "" {
		errs = append(errs, fmt.Errorf("dbname not found"))
	}
	if cfg.Username == "" {
		errs = append(errs, fmt.Errorf("username not found"))
	}
	if cfg.Password == "" {
		errs = append(errs, fmt.Errorf("password not found"))
	}
	if cfg.Host == "" {
		errs = append(errs, fmt.Errorf("host not found"))
	}
	if cfg.SSLMode == "" {
		errs = append(errs, fmt.Errorf("ssl_mode not found"))
	}
	if cfg.Port == 0 {
		errs = append(errs, fmt.Errorf("port not found"))
	}
	return errors.Join(errs...)
}
