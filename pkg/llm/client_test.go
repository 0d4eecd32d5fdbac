/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package llm

import (
	"testing"

	"gotest.tools/assert"

	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

func TestNewOpenAIClientEmptyKey(t *testing.T) {
	_, err := NewOpenAIClient("")
	assert.Assert(t, flowerrors.IsBadRequest(err))
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, StripFences("```json\n{\"a\":1}\n```"), `{"a":1}`)
	assert.Equal(t, StripFences("```\n{\"a\":1}\n```"), `{"a":1}`)
	assert.Equal(t, StripFences(`{"a":1}`), `{"a":1}`)
	assert.Equal(t, StripFences("  {\"a\":1}  "), `{"a":1}`)
}
