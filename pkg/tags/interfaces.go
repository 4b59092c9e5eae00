// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tags

import (
	"context"

	"github.com/datasektionen/hive/pkg/groups"
)

type RepositoryInterface interface {
	FindTag(ctx context.Context, ref Ref) (*Tag, error)
	FindAssignmentsByUser(ctx context.Context, systemID, username string) ([]Assignment, error)
	FindAssignmentsByGroup(ctx context.Context, systemID string, group groups.Ref) ([]Assignment, error)
	FindAssignmentsByTags(ctx context.Context, refs []Ref) ([]Assignment, error)
	FindAllSubtagEdges(ctx context.Context, systemID string) ([]SubtagEdge, error)
}

// ResolverInterface is the tag resolver's contract.
type ResolverInterface interface {
	TagsOfUser(ctx context.Context, systemID, username string) ([]Effective, error)
	TagsOfGroup(ctx context.Context, systemID string, group groups.Ref) ([]Effective, error)
	TaggedIn(ctx context.Context, ref Ref) ([]Effective, error)
}
