/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package nodes

import (
	"context"
	"fmt"
	"strconv"

	v1 "github.com/Memo-Aldu/flow-builder/pkg/apis/v1"
	"github.com/Memo-Aldu/flow-builder/pkg/browser"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
	"github.com/Memo-Aldu/flow-builder/pkg/llm"
	"github.com/Memo-Aldu/flow-builder/pkg/utils/httpclient"
)

// Executor runs one node against the execution environment. Executors never
// touch persistent storage: they return outputs and buffer log lines on the
// node's phase scratch.
type Executor interface {
	Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error)
}

// CredentialResolver resolves a credential id owned by a user into its
// plaintext secret. secrets.CredentialResolver is the production
// implementation; tests substitute a map-backed fake.
type CredentialResolver interface {
	Resolve(ctx context.Context, credentialId, userId string) (string, error)
}

// Deps carries the collaborators executors need. One Deps value is shared
// by the whole registry.
type Deps struct {
	Browser     browser.Factory
	HTTP        httpclient.Interface
	NewLLM      llm.Factory
	Credentials CredentialResolver
}

// stringInput returns the node input under handle coerced to a string.
func stringInput(node v1.Node, handle string) (string, error) {
	raw, ok := node.Data.Inputs[handle]
	if !ok || raw == nil {
		return "", flowerrors.NewUnresolvedInput(node.Id, handle)
	}
	return coerceString(raw), nil
}

// optionalString returns the input under handle, or def when absent or empty.
func optionalString(node v1.Node, handle, def string) string {
	raw, ok := node.Data.Inputs[handle]
	if !ok || raw == nil {
		return def
	}
	s := coerceString(raw)
	if s == "" {
		return def
	}
	return s
}

// floatInput returns the input under handle coerced to a float.
func floatInput(node v1.Node, handle string) (float64, error) {
	raw, ok := node.Data.Inputs[handle]
	if !ok || raw == nil {
		return 0, flowerrors.NewUnresolvedInput(node.Id, handle)
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, flowerrors.NewExecutorError(node.Data.Type,
				fmt.Sprintf("input %q is not a number", handle)).WithError(err)
		}
		return f, nil
	}
	return 0, flowerrors.NewExecutorError(node.Data.Type,
		fmt.Sprintf("input %q is not a number", handle))
}

// coerceString renders scalar input values as strings. Non-scalar values
// fall back to their default formatting.
func coerceString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// resolveCredential resolves the credential id stored under handle into
// plaintext scoped to the environment's user.
func resolveCredential(ctx context.Context, d Deps, node v1.Node, env *Environment, handle string) (string, error) {
	credentialId, err := stringInput(node, handle)
	if err != nil {
		return "", err
	}
	return d.Credentials.Resolve(ctx, credentialId, env.UserId)
}

// requirePage guards executors that act on the current page.
func requirePage(node v1.Node, env *Environment) error {
	if env.Browser == nil {
		return flowerrors.NewExecutorError(node.Data.Type, "no browser page found in environment")
	}
	return nil
}
