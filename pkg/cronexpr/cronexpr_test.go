/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package cronexpr

import (
	"testing"
	"time"

	"gotest.tools/assert"

	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

func TestNextIsStrictlyAfterBase(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	next, err := Next("0 12 * * *", base)
	assert.NilError(t, err)
	assert.Assert(t, next.After(base))
	assert.Equal(t, next, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
}

func TestNextEveryFiveMinutes(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 3, 30, 0, time.UTC)
	next, err := Next("*/5 * * * *", base)
	assert.NilError(t, err)
	assert.Equal(t, next, time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC))
}

func TestNextConvertsBaseToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	base := time.Date(2026, 3, 1, 14, 0, 0, 0, loc)
	next, err := Next("0 13 * * *", base)
	assert.NilError(t, err)
	assert.Equal(t, next, time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC))
}

func TestValidate(t *testing.T) {
	assert.NilError(t, Validate("*/10 * * * *"))
	assert.NilError(t, Validate("@hourly"))

	err := Validate("not a cron")
	assert.Assert(t, err != nil)
	assert.Equal(t, flowerrors.ReasonForError(err), flowerrors.BadCronExpression)

	err = Validate("")
	assert.Assert(t, flowerrors.IsBadRequest(err))
}

func TestNextBadExpression(t *testing.T) {
	_, err := Next("61 * * * *", time.Now())
	assert.Equal(t, flowerrors.ReasonForError(err), flowerrors.BadCronExpression)
}
