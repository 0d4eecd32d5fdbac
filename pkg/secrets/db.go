/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package secrets

import (
	"context"

	"github.com/Memo-Aldu/flow-builder/pkg/crypto"
	"github.com/Memo-Aldu/flow-builder/pkg/database/client"
)

// dbStore resolves references against the local encrypted secret table.
// Values are AES-GCM encrypted at rest; decryption happens here and the
// plaintext goes no further than the caller's stack.
type dbStore struct {
	client *client.Client
	crypto *crypto.Crypto
}

// NewDBStore builds the local backend over the database client.
func NewDBStore(c *client.Client) Store {
	return &dbStore{client: c, crypto: crypto.NewCrypto()}
}

func (s *dbStore) Resolve(ctx context.Context, secretId string) (string, error) {
	encrypted, err := s.client.GetDbSecret(ctx, secretId)
	if err != nil {
		return "", err
	}
	return s.crypto.Decrypt(encrypted)
}

// PutDBSecret encrypts plaintext and stores it under secretId, returning
// the tagged reference to persist on the credential row.
func PutDBSecret(ctx context.Context, c *client.Client, secretId, plaintext string) (string, error) {
	encrypted, err := crypto.NewCrypto().Encrypt([]byte(plaintext))
	if err != nil {
		return "", err
	}
	if err = c.PutDbSecret(ctx, secretId, encrypted); err != nil {
		return "", err
	}
	return client.DBSecretPrefix + secretId, nil
}
