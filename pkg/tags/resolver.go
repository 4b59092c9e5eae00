// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tags

import (
	"context"
	"fmt"

	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/tracing"
	"github.com/datasektionen/hive/pkg/groups"
)

// Resolver implements tags_of/tagged_in. The ancestry view is
// the reflexive-transitive closure of the subtag relation, traversed with
// the same per-path cycle-breaking strategy as the membership resolver.
// Rows are deduplicated per (assignment, reached tag): a tag reached from
// the same assignment along several paths yields a single row.
type Resolver struct {
	repo RepositoryInterface

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

type tagEdgeSets struct {
	parentsOf  map[string][]string // child tag_id -> parent tag_ids
	childrenOf map[string][]string // parent tag_id -> child tag_ids
}

func buildTagEdgeSets(edges []SubtagEdge) *tagEdgeSets {
	es := &tagEdgeSets{parentsOf: make(map[string][]string), childrenOf: make(map[string][]string)}
	for _, e := range edges {
		es.parentsOf[e.Child] = append(es.parentsOf[e.Child], e.Parent)
		es.childrenOf[e.Parent] = append(es.childrenOf[e.Parent], e.Child)
	}
	return es
}

func onTagPath(path []string, tagID string) bool {
	for _, p := range path {
		if p == tagID {
			return true
		}
	}
	return false
}

// ascendAssignments takes the direct assignments made on entity (leaves)
// and, for each, ascends the subtag ancestry to produce the effective
// tag set with content stripped on indirect propagation.
func (r *Resolver) ascendAssignments(ctx context.Context, systemID string, leaves []Assignment) ([]Effective, error) {
	edges, err := r.repo.FindAllSubtagEdges(ctx, systemID)
	if err != nil {
		return nil, fmt.Errorf("unable to load subtag edges: %w", err)
	}
	es := buildTagEdgeSets(edges)

	seen := make(map[string]bool)
	result := make([]Effective, 0)

	for _, leaf := range leaves {
		var ascend func(tagID string, path []string)
		ascend = func(tagID string, path []string) {
			ref := Ref{SystemID: systemID, TagID: tagID}
			reflexive := len(path) == 1

			key := fmt.Sprintf("%d|%s", leaf.ID, tagID)
			if !seen[key] {
				seen[key] = true
				eff := Effective{Tag: ref, Username: leaf.Username, Group: leaf.Group}
				if reflexive {
					id := leaf.ID
					eff.ID = &id
					eff.Content = leaf.Content
				}
				result = append(result, eff)
			}

			for _, parent := range es.parentsOf[tagID] {
				if onTagPath(path, parent) {
					continue
				}
				ascend(parent, append(path, parent))
			}
		}

		ascend(leaf.Tag.TagID, []string{leaf.Tag.TagID})
	}

	return result, nil
}

func (r *Resolver) TagsOfUser(ctx context.Context, systemID, username string) ([]Effective, error) {
	ctx, span := r.tracer.Start(ctx, "tags.Resolver.TagsOfUser")
	defer span.End()

	leaves, err := r.repo.FindAssignmentsByUser(ctx, systemID, username)
	if err != nil {
		return nil, fmt.Errorf("unable to load tag assignments: %w", err)
	}

	return r.ascendAssignments(ctx, systemID, leaves)
}

func (r *Resolver) TagsOfGroup(ctx context.Context, systemID string, group groups.Ref) ([]Effective, error) {
	ctx, span := r.tracer.Start(ctx, "tags.Resolver.TagsOfGroup")
	defer span.End()

	leaves, err := r.repo.FindAssignmentsByGroup(ctx, systemID, group)
	if err != nil {
		return nil, fmt.Errorf("unable to load tag assignments: %w", err)
	}

	return r.ascendAssignments(ctx, systemID, leaves)
}

// TaggedIn returns every entity effectively tagged with ref: direct
// assignments made on ref itself (content preserved) plus assignments made
// on any descendant tag (content stripped).
func (r *Resolver) TaggedIn(ctx context.Context, ref Ref) ([]Effective, error) {
	ctx, span := r.tracer.Start(ctx, "tags.Resolver.TaggedIn")
	defer span.End()

	edges, err := r.repo.FindAllSubtagEdges(ctx, ref.SystemID)
	if err != nil {
		return nil, fmt.Errorf("unable to load subtag edges: %w", err)
	}
	es := buildTagEdgeSets(edges)

	descendants := make(map[string]bool)

	var descend func(tagID string, path []string)
	descend = func(tagID string, path []string) {
		descendants[tagID] = true

		for _, child := range es.childrenOf[tagID] {
			if onTagPath(path, child) {
				continue
			}
			descend(child, append(path, child))
		}
	}
	descend(ref.TagID, []string{ref.TagID})

	refs := make([]Ref, 0, len(descendants))
	for tagID := range descendants {
		refs = append(refs, Ref{SystemID: ref.SystemID, TagID: tagID})
	}

	assignments, err := r.repo.FindAssignmentsByTags(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("unable to load tag assignments: %w", err)
	}

	result := make([]Effective, 0, len(assignments))
	for _, a := range assignments {
		eff := Effective{Tag: ref, Username: a.Username, Group: a.Group}
		if a.Tag.TagID == ref.TagID {
			id := a.ID
			eff.ID = &id
			eff.Content = a.Content
		}
		result = append(result, eff)
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
