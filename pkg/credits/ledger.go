/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package credits

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/Memo-Aldu/flow-builder/pkg/database/client"
	"github.com/Memo-Aldu/flow-builder/pkg/metrics"
)

// Ledger is the credit accounting surface used by the runner and the
// payments webhook. Debits are atomic and never drive a balance negative;
// they are not rolled back on downstream node failure because they represent
// work already performed.
type Ledger interface {
	Debit(ctx context.Context, userId string, amount int) error
	Credit(ctx context.Context, userId string, amount int, purchase *client.UserPurchase) error
	Balance(ctx context.Context, userId string) (int, error)
}

type dbLedger struct {
	client *client.Client
}

// NewLedger returns a Ledger backed by the database client.
func NewLedger(c *client.Client) Ledger {
	return &dbLedger{client: c}
}

// Debit subtracts amount from the user's balance under a row lock.
// Returns InsufficientCredits without any write when the balance is short.
func (l *dbLedger) Debit(ctx context.Context, userId string, amount int) error {
	if amount == 0 {
		return nil
	}
	if err := l.client.DebitUserCredits(ctx, userId, amount); err != nil {
		return err
	}
	metrics.CreditsDebited.Add(float64(amount))
	klog.V(4).Infof("debited %d credits from user %s", amount, userId)
	return nil
}

// Credit adds credits and records the purchase in the same transaction.
func (l *dbLedger) Credit(ctx context.Context, userId string, amount int, purchase *client.UserPurchase) error {
	return l.client.CreditUserCredits(ctx, userId, amount, purchase)
}

// Balance returns the user's current credit balance.
func (l *dbLedger) Balance(ctx context.Context, userId string) (int, error) {
	balance, err := l.client.GetUserBalance(ctx, userId)
	if err != nil {
		return 0, err
	}
	return balance.Credits, nil
}
