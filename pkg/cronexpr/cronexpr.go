/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package cronexpr

import (
	"time"

	"github.com/robfig/cron/v3"

	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

// Validate reports whether expr is a valid five-field cron expression.
// Descriptors such as @daily are accepted.
func Validate(expr string) error {
	if expr == "" {
		return flowerrors.NewBadCron(expr)
	}
	if _, err := cron.ParseStandard(expr); err != nil {
		return flowerrors.NewBadCron(expr).WithError(err)
	}
	return nil
}

// Next returns the first activation of expr strictly after base, in UTC.
// Cron fields are interpreted in UTC regardless of the zone carried by base.
func Next(expr string, base time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return time.Time{}, flowerrors.NewBadCron(expr).WithError(err)
	}
	return schedule.Next(base.UTC()), nil
}
