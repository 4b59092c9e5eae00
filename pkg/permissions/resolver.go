// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package permissions

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/datasektionen/hive/internal/clock"
	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/tracing"
	"github.com/datasektionen/hive/pkg/groups"
	"github.com/datasektionen/hive/pkg/storage"
)

// Resolver implements perms_of/has.
type Resolver struct {
	repo    RepositoryInterface
	members groups.ResolverInterface
	clock   *clock.Clock

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

// principalGroups resolves a Principal down to the group refs to union
// permission assignments over: a user's groups_of(today) or none for a
// token (a token is matched directly by its id instead).
func (r *Resolver) principalGroups(ctx context.Context, principal Principal) ([]groups.Ref, error) {
	if principal.Username == nil {
		return nil, nil
	}

	today := r.clock.Today()
	memberships, err := r.members.GroupsOf(ctx, *principal.Username, today)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve principal's groups: %w", err)
	}

	refs := make([]groups.Ref, len(memberships))
	for i, m := range memberships {
		refs[i] = m.Group
	}
	return refs, nil
}

// PermsOf returns the effective set of (perm_id, scope) grants a principal
// holds for systemID, folded so that: an unscoped perm's assignments
// collapse to one null-scope grant; a scoped perm's assignments keep each
// distinct scope literal unless any assignment carries "*", in which case
// the wildcard alone survives. The result is ordered lexicographically on
// (perm_id, scope-with-null-as-empty) with no duplicates.
func (r *Resolver) PermsOf(ctx context.Context, principal Principal, systemID string) ([]Grant, error) {
	ctx, span := r.tracer.Start(ctx, "permissions.Resolver.PermsOf")
	defer span.End()

	groupRefs, err := r.principalGroups(ctx, principal)
	if err != nil {
		return nil, err
	}

	assignments, err := r.repo.FindAssignments(ctx, systemID, groupRefs, principal.TokenID)
	if err != nil {
		return nil, fmt.Errorf("unable to load permission assignments: %w", err)
	}

	byPerm := make(map[string]map[string]bool) // perm_id -> set of scope ("" for unscoped/nil)
	wildcard := make(map[string]bool)

	for _, a := range assignments {
		scopes, ok := byPerm[a.PermID]
		if !ok {
			scopes = make(map[string]bool)
			byPerm[a.PermID] = scopes
		}

		scope := ""
		if a.Scope != nil {
			scope = *a.Scope
		}
		scopes[scope] = true

		if scope == WildcardScope {
			wildcard[a.PermID] = true
		}
	}

	grants := make([]Grant, 0)
	for permID, scopes := range byPerm {
		if wildcard[permID] {
			w := WildcardScope
			grants = append(grants, Grant{PermID: permID, Scope: &w})
			continue
		}

		for scope := range scopes {
			var s *string
			if scope != "" {
				v := scope
				s = &v
			}
			grants = append(grants, Grant{PermID: permID, Scope: s})
		}
	}

	sort.Slice(grants, func(i, j int) bool {
		if grants[i].PermID != grants[j].PermID {
			return grants[i].PermID < grants[j].PermID
		}
		return grants[i].ScopeOrEmpty() < grants[j].ScopeOrEmpty()
	})

	return grants, nil
}

// Has implements the has() check semantics described by PermsOf's folding. 
func (r *Resolver) Has(ctx context.Context, principal Principal, systemID, permID string, scope *string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "permissions.Resolver.Has")
	defer span.End()

	perm, err := r.repo.FindPermission(ctx, systemID, permID)
	if errors.Is(err, storage.ErrNotFound) {
		// resolvers never fail on a missing entity: has() is simply false.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("unable to load permission: %w", err)
	}

	grants, err := r.PermsOf(ctx, principal, systemID)
	if err != nil {
		return false, err
	}

	has := func(wantScope *string) bool {
		for _, g := range grants {
			if g.PermID != permID {
				continue
			}
			if wantScope == nil && g.Scope == nil {
				return true
			}
			if g.Scope != nil && *g.Scope == WildcardScope {
				return true
			}
			if wantScope != nil && g.Scope != nil && *g.Scope == *wantScope {
				return true
			}
		}
		return false
	}

	if !perm.HasScope {
		return has(nil), nil
	}

	if scope == nil {
		// scoped perm, no scope requested -> only the wildcard satisfies it.
		wildcard := WildcardScope
		return has(&wildcard), nil
	}

	return has(scope), nil
}

func NewResolver(repo RepositoryInterface, members groups.ResolverInterface, clk *clock.Clock, tracer tracing.TracingInterface, logger logging.LoggerInterface) *Resolver {
	r := new(Resolver)

	r.repo = repo
	r.members = members
	r.clock = clk
	r.tracer = tracer
	r.logger = logger

	return r
}
