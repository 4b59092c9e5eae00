// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tags

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/tracing"
	"github.com/datasektionen/hive/pkg/groups"
)

type fakeTagRepo struct {
	byUser map[string][]Assignment
	byTags []Assignment
	edges  []SubtagEdge
}

func (f *fakeTagRepo) FindTag(ctx context.Context, ref Ref) (*Tag, error) { return nil, nil }

func (f *fakeTagRepo) FindAssignmentsByUser(ctx context.Context, systemID, username string) ([]Assignment, error) {
	return f.byUser[username], nil
}

func (f *fakeTagRepo) FindAssignmentsByGroup(ctx context.Context, systemID string, group groups.Ref) ([]Assignment, error) {
	return nil, nil
}

func (f *fakeTagRepo) FindAssignmentsByTags(ctx context.Context, refs []Ref) ([]Assignment, error) {
	wanted := make(map[Ref]bool, len(refs))
	for _, r := range refs {
		wanted[r] = true
	}

	out := make([]Assignment, 0)
	for _, a := range f.byTags {
		if wanted[a.Tag] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeTagRepo) FindAllSubtagEdges(ctx context.Context, systemID string) ([]SubtagEdge, error) {
	return f.edges, nil
}

func newTestTagResolver(repo *fakeTagRepo) *Resolver {
	tracer := tracing.NewTracer(tracing.NewConfig(false, "", "", logging.NewNoopLogger()))
	return NewResolver(repo, tracer, logging.NewNoopLogger())
}

func strPtr(s string) *string { return &s }

func TestTagsOfUser_ReflexiveAssignmentKeepsContent(t *testing.T) {
	content := "kassor"
	repo := &fakeTagRepo{
		byUser: map[string][]Assignment{
			"pleb": {{ID: 1, Tag: Ref{SystemID: "sys", TagID: "funktionar"}, Content: &content, Username: strPtr("pleb")}},
		},
	}

	got, err := newTestTagResolver(repo).TagsOfUser(context.Background(), "sys", "pleb")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, &content, got[0].Content)
	require.NotNil(t, got[0].ID)
	assert.Equal(t, int64(1), *got[0].ID)
}

func TestTagsOfUser_AncestryStripsContentOnPropagation(t *testing.T) {
	content := "styrelse"
	repo := &fakeTagRepo{
		byUser: map[string][]Assignment{
			"pleb": {{ID: 2, Tag: Ref{SystemID: "sys", TagID: "ordf"}, Content: &content, Username: strPtr("pleb")}},
		},
		edges: []SubtagEdge{
			{SystemID: "sys", Parent: "funktionar", Child: "ordf"},
		},
	}

	got, err := newTestTagResolver(repo).TagsOfUser(context.Background(), "sys", "pleb")
	require.NoError(t, err)
	require.Len(t, got, 2)

	byTag := map[string]Effective{}
	for _, e := range got {
		byTag[e.Tag.TagID] = e
	}

	assert.Equal(t, &content, byTag["ordf"].Content, "the tag the assignment was made on directly keeps its content")
	assert.Nil(t, byTag["funktionar"].Content, "content is stripped once propagated up through a subtag edge")
	assert.Nil(t, byTag["funktionar"].ID)
}

func TestTagsOfUser_CycleDoesNotInfiniteLoop(t *testing.T) {
	repo := &fakeTagRepo{
		byUser: map[string][]Assignment{
			"pleb": {{ID: 1, Tag: Ref{SystemID: "sys", TagID: "a"}, Username: strPtr("pleb")}},
		},
		edges: []SubtagEdge{
			{SystemID: "sys", Parent: "b", Child: "a"},
			{SystemID: "sys", Parent: "a", Child: "b"},
		},
	}

	got, err := newTestTagResolver(repo).TagsOfUser(context.Background(), "sys", "pleb")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestTaggedIn_DescendantAssignmentsHaveContentStripped(t *testing.T) {
	rootContent := "root-content"
	leafContent := "leaf-content"

	repo := &fakeTagRepo{
		edges: []SubtagEdge{
			{SystemID: "sys", Parent: "funktionar", Child: "ordf"},
		},
		byTags: []Assignment{
			{ID: 1, Tag: Ref{SystemID: "sys", TagID: "funktionar"}, Content: &rootContent, Username: strPtr("direct-on-root")},
			{ID: 2, Tag: Ref{SystemID: "sys", TagID: "ordf"}, Content: &leafContent, Username: strPtr("direct-on-child")},
		},
	}

	got, err := newTestTagResolver(repo).TaggedIn(context.Background(), Ref{SystemID: "sys", TagID: "funktionar"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	byUser := map[string]Effective{}
	for _, e := range got {
		byUser[*e.Username] = e
	}

	assert.Equal(t, &rootContent, byUser["direct-on-root"].Content)
	assert.Nil(t, byUser["direct-on-child"].Content, "an assignment made on a descendant tag is listed under the root with content stripped")
}
