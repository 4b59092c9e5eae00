// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package permissions

import (
	"context"

	"github.com/datasektionen/hive/pkg/groups"
)

type RepositoryInterface interface {
	FindPermission(ctx context.Context, systemID, permID string) (*Permission, error)
	FindAssignments(ctx context.Context, systemID string, groupRefs []groups.Ref, tokenID *string) ([]Assignment, error)
}

// ResolverInterface is the permission resolver's contract.
type ResolverInterface interface {
	PermsOf(ctx context.Context, principal Principal, systemID string) ([]Grant, error)
	Has(ctx context.Context, principal Principal, systemID, permID string, scope *string) (bool, error)
}
