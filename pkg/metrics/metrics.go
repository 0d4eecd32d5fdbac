/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"

	"github.com/Memo-Aldu/flow-builder/pkg/config"
)

var (
	// ExecutionsProcessed counts executions driven to a terminal status,
	// labeled by that status.
	ExecutionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flow_executions_processed_total",
		Help: "Workflow executions driven to a terminal status.",
	}, []string{"status"})

	// CreditsDebited counts credits debited across all executions.
	CreditsDebited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flow_credits_debited_total",
		Help: "Credits debited from user balances.",
	})

	// MessagesReceived counts queue messages received by workers.
	MessagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flow_queue_messages_received_total",
		Help: "Queue messages received by workers.",
	})

	// PoisonMessages counts undecodable queue messages dropped by workers.
	PoisonMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flow_queue_poison_messages_total",
		Help: "Undecodable queue messages deleted without processing.",
	})

	// WorkflowsScheduled counts executions enqueued by the scheduler.
	WorkflowsScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flow_workflows_scheduled_total",
		Help: "Scheduled executions enqueued by the scheduler.",
	})

	// GuestsReaped counts expired guest users deleted by the reaper.
	GuestsReaped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flow_guests_reaped_total",
		Help: "Expired guest users deleted by the reaper.",
	})
)

// Serve exposes /healthz and /metrics when the health listener is enabled.
// The server shuts down when ctx is canceled.
func Serve(ctx context.Context) {
	if !config.IsHealthCheckEnabled() {
		return
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.GetHealthCheckPort()),
		Handler: mux,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	go func() {
		klog.Infof("health listener on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			klog.ErrorS(err, "health listener failed")
		}
	}()
}
