// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tokens

import (
	"context"
	"time"
)

type RepositoryInterface interface {
	FindBySecretHash(ctx context.Context, secretHashHex string) (*Token, error)
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
}
