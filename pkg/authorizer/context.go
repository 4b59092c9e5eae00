// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorizer

import (
	"context"

	"github.com/datasektionen/hive/pkg/permissions"
)

// Caller is what the gate resolves a bearer secret down to: the token's
// identity and the system it belongs to.
type Caller struct {
	TokenID  string
	SystemID string
}

// Principal adapts the caller into the shape permissions.Resolver expects.
func (c *Caller) Principal() permissions.Principal {
	return permissions.TokenPrincipal(c.TokenID)
}

type callerContextKey int

var callerKey callerContextKey

func CallerContext(ctx context.Context, caller *Caller) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if caller == nil {
		return ctx
	}
	return context.WithValue(ctx, callerKey, caller)
}

func CallerFromContext(ctx context.Context) *Caller {
	if ctx == nil {
		return nil
	}
	if caller, ok := ctx.Value(callerKey).(*Caller); ok {
		return caller
	}
	return nil
}
