/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package backoff

import (
	"time"

	"github.com/cenkalti/backoff/v4"

	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

// Retry executes an operation with exponential backoff retry logic.
// It uses the backoff library to retry the operation with exponential backoff intervals
// until the operation succeeds or the maximum elapsed time is reached.
//
// Parameters:
//   - op: The operation function to execute, which should return an error
//   - maxElapsedTime: Maximum total time to spend retrying before giving up
//   - maxInterval: Maximum interval between retry attempts
//
// Returns:
//   - error: The last error returned by the operation, or nil if operation succeeded
func Retry(op backoff.Operation, maxElapsedTime, maxInterval time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxElapsedTime
	b.MaxInterval = maxInterval
	if err := backoff.Retry(op, b); err != nil {
		return err
	}
	return nil
}

// TransientRetry executes an operation with fixed-interval retry logic for
// transient errors. Non-transient errors or reaching the maximum retry count
// stop the retry loop.
func TransientRetry(op backoff.Operation, count int, interval time.Duration) error {
	for i := 0; i < count; i++ {
		err := op()
		if err == nil {
			break
		}
		if i == count-1 || !flowerrors.IsTransient(err) {
			return err
		}
		time.Sleep(interval)
	}
	return nil
}
