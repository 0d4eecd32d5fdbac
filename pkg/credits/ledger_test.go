/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package credits

import (
	"context"
	"testing"

	"gotest.tools/assert"

	"github.com/Memo-Aldu/flow-builder/pkg/database/client"
)

func TestDebitZeroAmountIsNoop(t *testing.T) {
	ledger := NewLedger(&client.Client{})

	err := ledger.Debit(context.Background(), "user-123", 0)
	assert.NilError(t, err)
}

func TestDebitNoDBConnection(t *testing.T) {
	ledger := NewLedger(&client.Client{})

	err := ledger.Debit(context.Background(), "user-123", 5)
	assert.ErrorContains(t, err, "db has not been initialized")
}

func TestBalanceNoDBConnection(t *testing.T) {
	ledger := NewLedger(&client.Client{})

	_, err := ledger.Balance(context.Background(), "user-123")
	assert.ErrorContains(t, err, "db has not been initialized")
}
