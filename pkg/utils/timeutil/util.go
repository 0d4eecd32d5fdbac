/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package timeutil

import (
	"time"
)

const (
	TimeRFC3339Short = "2006-01-02T15:04:05"
)

func FormatRFC3339(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(TimeRFC3339Short)
}

// DurationMillis returns the elapsed milliseconds between two instants,
// never negative.
func DurationMillis(from, to time.Time) int64 {
	d := to.Sub(from).Milliseconds()
	if d < 0 {
		return 0
	}
	return d
}
