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

	"k8s.io/klog/v2"

	"github.com/Memo-Aldu/flow-builder/pkg/browser"
	"github.com/Memo-Aldu/flow-builder/pkg/config"
	"github.com/Memo-Aldu/flow-builder/pkg/credits"
	"github.com/Memo-Aldu/flow-builder/pkg/database/client"
	klogutil "github.com/Memo-Aldu/flow-builder/pkg/klog"
	"github.com/Memo-Aldu/flow-builder/pkg/llm"
	"github.com/Memo-Aldu/flow-builder/pkg/metrics"
	"github.com/Memo-Aldu/flow-builder/pkg/options"
	"github.com/Memo-Aldu/flow-builder/pkg/queue"
	"github.com/Memo-Aldu/flow-builder/pkg/runner"
	"github.com/Memo-Aldu/flow-builder/pkg/runner/nodes"
	"github.com/Memo-Aldu/flow-builder/pkg/secrets"
	"github.com/Memo-Aldu/flow-builder/pkg/utils/httpclient"
	"github.com/Memo-Aldu/flow-builder/pkg/worker"
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
	metrics.Serve(ctx)

	dbClient := client.NewClient()
	if dbClient == nil {
		return fmt.Errorf("failed to init db client")
	}
	defer dbClient.Close()
	if err := dbClient.Migrate(); err != nil {
		return err
	}

	dispatchQueue, err := queue.NewProvider(ctx)
	if err != nil {
		return err
	}
	external, err := secrets.NewAWSStore(ctx)
	if err != nil {
		return err
	}
	resolver := secrets.NewCredentialResolver(dbClient,
		secrets.NewStore(external, secrets.NewDBStore(dbClient)))

	registry := nodes.NewRegistry(nodes.Deps{
		Browser:     browser.NewFactory(),
		HTTP:        httpclient.NewHttpClient(),
		NewLLM:      llm.NewOpenAIClient,
		Credentials: resolver,
	})
	workflowRunner := runner.New(dbClient, credits.NewLedger(dbClient), registry)

	klog.Infof("worker starting, queue=%s pollingMode=%t", dispatchQueue.Name(), config.IsPollingMode())
	return worker.New(dispatchQueue, dbClient, workflowRunner).Run(ctx)
}
