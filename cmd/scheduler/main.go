/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"k8s.io/klog/v2"

	"github.com/Memo-Aldu/flow-builder/pkg/config"
	"github.com/Memo-Aldu/flow-builder/pkg/database/client"
	klogutil "github.com/Memo-Aldu/flow-builder/pkg/klog"
	"github.com/Memo-Aldu/flow-builder/pkg/metrics"
	"github.com/Memo-Aldu/flow-builder/pkg/options"
	"github.com/Memo-Aldu/flow-builder/pkg/queue"
	"github.com/Memo-Aldu/flow-builder/pkg/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opt := &options.Options{}
	if err := opt.InitFlags(); err != nil {
		return err
	}
	if err := klogutil.Init(opt.LogfilePath, opt.LogFileSize); err != nil {
		return err
	}
	if opt.Config != "" {
		if err := config.LoadConfig(opt.Config); err != nil {
			return err
		}
	}
	config.BindEnvironment()
	klogutil.SetLevel(config.GetLogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatchQueue, err := queue.NewProvider(ctx)
	if err != nil {
		return err
	}

	// One-shot mode runs a single tick on a single-connection client, for
	// hosts that invoke the scheduler on an external cadence.
	if config.IsExitAfterCompletion() {
		return runOnce(ctx, dispatchQueue)
	}

	metrics.Serve(ctx)
	dbClient := client.NewClient()
	if dbClient == nil {
		return fmt.Errorf("failed to init db client")
	}
	defer dbClient.Close()
	if err := dbClient.Migrate(); err != nil {
		return err
	}
	return scheduler.New(dbClient, dispatchQueue).Start(ctx)
}

func runOnce(ctx context.Context, dispatchQueue queue.Interface) error {
	dbClient, err := client.NewTickClient()
	if err != nil {
		return err
	}
	defer dbClient.Close()

	now := time.Now().UTC()
	s := scheduler.New(dbClient, dispatchQueue)
	s.RunTick(ctx, now)
	s.RunCleanup(ctx, now)
	klog.Info("scheduler tick completed")
	return nil
}
