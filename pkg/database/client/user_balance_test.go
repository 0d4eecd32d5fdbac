/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"context"
	"testing"

	"gotest.tools/assert"

	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

func TestGetUserBalanceEmptyId(t *testing.T) {
	client := &Client{}

	_, err := client.GetUserBalance(context.Background(), "")
	assert.Assert(t, flowerrors.IsBadRequest(err))
}

func TestDebitUserCreditsInvalidInput(t *testing.T) {
	client := &Client{}

	err := client.DebitUserCredits(context.Background(), "", 5)
	assert.Assert(t, flowerrors.IsBadRequest(err))

	err = client.DebitUserCredits(context.Background(), "user-123", -1)
	assert.Assert(t, flowerrors.IsBadRequest(err))
}

func TestDebitUserCreditsNoDBConnection(t *testing.T) {
	client := &Client{}

	err := client.DebitUserCredits(context.Background(), "user-123", 5)
	assert.ErrorContains(t, err, "db has not been initialized")
}

func TestCreditUserCreditsInvalidAmount(t *testing.T) {
	client := &Client{}

	err := client.CreditUserCredits(context.Background(), "user-123", 0, nil)
	assert.Assert(t, flowerrors.IsBadRequest(err))
}

func TestTUserBalanceConstant(t *testing.T) {
	assert.Equal(t, TUserBalance, "user_balance")
	assert.Equal(t, TUserPurchase, "user_purchase")
}
