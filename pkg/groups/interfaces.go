// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package groups

import (
	"context"
	"time"
)

type RepositoryInterface interface {
	FindGroup(ctx context.Context, ref Ref) (*Group, error)
	FindDirectMembershipsByUser(ctx context.Context, username string, at time.Time) ([]DirectMembership, error)
	FindDirectMembershipsByGroups(ctx context.Context, refs []Ref, at time.Time) ([]DirectMembership, error)
	FindAllSubgroupEdges(ctx context.Context) ([]SubgroupEdge, error)
}

// ResolverInterface is the membership resolver's contract.
type ResolverInterface interface {
	GroupsOf(ctx context.Context, username string, at time.Time) ([]Membership, error)
	MembersOf(ctx context.Context, ref Ref, at time.Time) ([]Member, error)
}
