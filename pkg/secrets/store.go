/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package secrets

import (
	"context"
	"strings"

	"k8s.io/klog/v2"

	"github.com/Memo-Aldu/flow-builder/pkg/crypto"
	"github.com/Memo-Aldu/flow-builder/pkg/database/client"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

// Store resolves a secret reference into its plaintext value on demand.
// Plaintext is never persisted and never logged; callers hold it only in
// local variables for the duration of one node run.
type Store interface {
	Resolve(ctx context.Context, secretRef string) (string, error)
}

// store selects a backend by reference prefix: "db:" goes to the local
// encrypted store, everything else to the external secret manager.
type store struct {
	external Store
	local    Store
}

// NewStore wires the prefix-dispatching store from its two backends.
func NewStore(external, local Store) Store {
	return &store{external: external, local: local}
}

func (s *store) Resolve(ctx context.Context, secretRef string) (string, error) {
	if secretRef == "" {
		return "", flowerrors.NewBadRequest("secret reference is empty")
	}
	if strings.HasPrefix(secretRef, client.DBSecretPrefix) {
		return s.local.Resolve(ctx, strings.TrimPrefix(secretRef, client.DBSecretPrefix))
	}
	return s.external.Resolve(ctx, secretRef)
}

// CredentialResolver resolves a user's credential row into plaintext.
type CredentialResolver struct {
	client *client.Client
	store  Store
}

// NewCredentialResolver builds a resolver over the database client and store.
func NewCredentialResolver(c *client.Client, s Store) *CredentialResolver {
	return &CredentialResolver{client: c, store: s}
}

// Resolve loads the credential scoped to its owner and resolves its
// secret reference. Only the masked tail of the value is ever logged.
func (r *CredentialResolver) Resolve(ctx context.Context, credentialId, userId string) (string, error) {
	credential, err := r.client.GetCredential(ctx, credentialId, userId)
	if err != nil {
		return "", err
	}
	plaintext, err := r.store.Resolve(ctx, credential.SecretRef)
	if err != nil {
		return "", err
	}
	klog.V(4).Infof("resolved credential %s (value %s)", credential.Name, crypto.Mask(plaintext))
	return plaintext, nil
}
