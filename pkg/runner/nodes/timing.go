/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package nodes

import (
	"context"
	"fmt"
	"time"

	v1 "github.com/Memo-Aldu/flow-builder/pkg/apis/v1"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

// maxDelay bounds a single delay node so one workflow cannot hold a worker
// slot indefinitely.
const maxDelay = 5 * time.Minute

// delayExecutor pauses the execution for a number of seconds.
type delayExecutor struct{}

func (e *delayExecutor) Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error) {
	scratch := env.Phase(node.Id)

	seconds, err := floatInput(node, HandleDuration)
	if err != nil {
		return nil, err
	}
	if seconds < 0 {
		return nil, flowerrors.NewExecutorError(node.Data.Type, "Duration must not be negative")
	}
	duration := time.Duration(seconds * float64(time.Second))
	if duration > maxDelay {
		duration = maxDelay
	}
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Waiting for %s.", duration))

	select {
	case <-time.After(duration):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return map[string]interface{}{"waited": true}, nil
}
