// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package groups

import (
	"context"
	"fmt"
	"time"

	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/tracing"
)

// Resolver implements groups_of/members_of. The subgroup graph
// is cyclic-prone by design; cycles are broken per traversal path, not
// with a global visited set, so that distinct paths re-entering the same
// group are both preserved.
type Resolver struct {
	repo RepositoryInterface

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

// parentEdge/childEdge adjacency, built once per call from the full edge
// set: ascent (groups_of) follows parentsOf, descent (members_of) follows
// childrenOf.
type edgeSets struct {
	parentsOf  map[Ref][]SubgroupEdge
	childrenOf map[Ref][]SubgroupEdge
}

func buildEdgeSets(edges []SubgroupEdge) *edgeSets {
	es := &edgeSets{
		parentsOf:  make(map[Ref][]SubgroupEdge),
		childrenOf: make(map[Ref][]SubgroupEdge),
	}

	for _, e := range edges {
		es.parentsOf[e.Child] = append(es.parentsOf[e.Child], e)
		es.childrenOf[e.Parent] = append(es.childrenOf[e.Parent], e)
	}

	return es
}

func onPath(path []Ref, ref Ref) bool {
	for _, p := range path {
		if p == ref {
			return true
		}
	}
	return false
}

// GroupsOf returns every group username is a direct or indirect member of
// at at, each with the path of group refs from the leaf direct-membership
// group up to the returned ancestor.
func (r *Resolver) GroupsOf(ctx context.Context, username string, at time.Time) ([]Membership, error) {
	ctx, span := r.tracer.Start(ctx, "groups.Resolver.GroupsOf")
	defer span.End()

	leaves, err := r.repo.FindDirectMembershipsByUser(ctx, username, at)
	if err != nil {
		return nil, fmt.Errorf("unable to load direct memberships: %w", err)
	}
	if len(leaves) == 0 {
		return nil, nil
	}

	edges, err := r.repo.FindAllSubgroupEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load subgroup edges: %w", err)
	}
	es := buildEdgeSets(edges)

	seen := make(map[string]bool)
	result := make([]Membership, 0)

	var ascend func(path []Ref)
	ascend = func(path []Ref) {
		current := path[len(path)-1]

		key := membershipKey(current, path)
		if !seen[key] {
			seen[key] = true
			result = append(result, Membership{Group: current, Path: append([]Ref(nil), path...)})
		}

		for _, edge := range es.parentsOf[current] {
			if onPath(path, edge.Parent) {
				continue
			}
			ascend(append(path, edge.Parent))
		}
	}

	seenLeaf := make(map[Ref]bool)
	for _, m := range leaves {
		if seenLeaf[m.Group] {
			continue
		}
		seenLeaf[m.Group] = true
		ascend([]Ref{m.Group})
	}

	return result, nil
}

func membershipKey(g Ref, path []Ref) string {
	s := g.ID + "@" + g.Domain + "|"
	for _, p := range path {
		s += p.ID + "@" + p.Domain + ";"
	}
	return s
}

// MembersOf returns every user who is a direct or indirect member of ref at
// at. from/until are copied from the leaf direct membership; manager is the
// direct membership's own manager bit for direct members, or the manager
// flag of the subgroup edge immediately below the queried root for
// indirect members,
// regardless of how many further hops separate the leaf from that edge.
func (r *Resolver) MembersOf(ctx context.Context, ref Ref, at time.Time) ([]Member, error) {
	ctx, span := r.tracer.Start(ctx, "groups.Resolver.MembersOf")
	defer span.End()

	edges, err := r.repo.FindAllSubgroupEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load subgroup edges: %w", err)
	}
	es := buildEdgeSets(edges)

	type reached struct {
		path        []Ref
		rootManager *bool // nil until the first hop away from the root is taken
	}

	// groupPaths collects every distinct path from ref down to each reached
	// group, not just the first one found: a diamond in the subgroup DAG
	// (two edges converging on the same descendant) must surface as two
	// rows, each with its own path and its own root-hop manager flag.
	groupPaths := make(map[Ref][]reached)
	seenPath := make(map[string]bool)

	var descend func(current Ref, path []Ref, rootManager *bool)
	descend = func(current Ref, path []Ref, rootManager *bool) {
		key := membershipKey(current, path)
		if !seenPath[key] {
			seenPath[key] = true
			groupPaths[current] = append(groupPaths[current], reached{path: append([]Ref(nil), path...), rootManager: rootManager})
		}

		for _, edge := range es.childrenOf[current] {
			if onPath(path, edge.Child) {
				continue
			}

			nextRootManager := rootManager
			if len(path) == 1 {
				// first hop away from the queried root
				m := edge.Manager
				nextRootManager = &m
			}

			descend(edge.Child, append(path, edge.Child), nextRootManager)
		}
	}

	descend(ref, []Ref{ref}, nil)

	refs := make([]Ref, 0, len(groupPaths))
	for g := range groupPaths {
		refs = append(refs, g)
	}

	leaves, err := r.repo.FindDirectMembershipsByGroups(ctx, refs, at)
	if err != nil {
		return nil, fmt.Errorf("unable to load direct memberships: %w", err)
	}

	seen := make(map[string]bool)
	result := make([]Member, 0)

	for _, m := range leaves {
		for _, info := range groupPaths[m.Group] {
			// leaf path: reverse(root..leaf) -> leaf..root, matching groups_of's convention.
			leafPath := make([]Ref, len(info.path))
			for i, p := range info.path {
				leafPath[len(info.path)-1-i] = p
			}

			manager := m.Manager
			if info.rootManager != nil {
				manager = *info.rootManager
			}

			key := fmt.Sprintf("%s|%v|%v|%v|%s", m.Username, manager, m.From, m.Until, membershipKey(Ref{}, leafPath))
			if seen[key] {
				continue
			}
			seen[key] = true

			result = append(result, Member{
				Username: m.Username,
				Manager:  manager,
				From:     m.From,
				Until:    m.Until,
				Path:     leafPath,
			})
		}
	}

	return result, nil
}

func NewResolver(repo RepositoryInterface, tracer tracing.TracingInterface, logger logging.LoggerInterface) *Resolver {
	r := new(Resolver)

	r.repo = repo
	r.tracer = tracer
	r.logger = logger

	return r
}
