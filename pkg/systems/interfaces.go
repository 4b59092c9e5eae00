// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package systems

import "context"

type RepositoryInterface interface {
	FindSystem(ctx context.Context, id string) (*System, error)
	ListSystems(ctx context.Context) ([]System, error)
}
