// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package groups

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/tracing"
)

type fakeRepo struct {
	directByUser   map[string][]DirectMembership
	directByGroups []DirectMembership
	edges          []SubgroupEdge
}

func (f *fakeRepo) FindGroup(ctx context.Context, ref Ref) (*Group, error) {
	return nil, nil
}

func (f *fakeRepo) FindDirectMembershipsByUser(ctx context.Context, username string, at time.Time) ([]DirectMembership, error) {
	return f.directByUser[username], nil
}

func (f *fakeRepo) FindDirectMembershipsByGroups(ctx context.Context, refs []Ref, at time.Time) ([]DirectMembership, error) {
	wanted := make(map[Ref]bool, len(refs))
	for _, r := range refs {
		wanted[r] = true
	}

	out := make([]DirectMembership, 0)
	for _, m := range f.directByGroups {
		if wanted[m.Group] {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindAllSubgroupEdges(ctx context.Context) ([]SubgroupEdge, error) {
	return f.edges, nil
}

func newTestResolver(repo *fakeRepo) *Resolver {
	tracer := tracing.NewTracer(tracing.NewConfig(false, "", "", logging.NewNoopLogger()))
	return NewResolver(repo, tracer, logging.NewNoopLogger())
}

func ref(id, domain string) Ref { return Ref{ID: id, Domain: domain} }

func TestGroupsOf_DirectOnly(t *testing.T) {
	at := time.Now()
	repo := &fakeRepo{
		directByUser: map[string][]DirectMembership{
			"pleb": {{Username: "pleb", Group: ref("prylen", "kth.se"), From: at, Until: at}},
		},
	}

	got, err := newTestResolver(repo).GroupsOf(context.Background(), "pleb", at)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ref("prylen", "kth.se"), got[0].Group)
	assert.Equal(t, []Ref{ref("prylen", "kth.se")}, got[0].Path)
}

func TestGroupsOf_IndirectThroughSubgroupChain(t *testing.T) {
	at := time.Now()
	repo := &fakeRepo{
		directByUser: map[string][]DirectMembership{
			"pleb": {{Username: "pleb", Group: ref("styrelsen", "prylen.kth.se"), From: at, Until: at}},
		},
		edges: []SubgroupEdge{
			{Parent: ref("prylen", "kth.se"), Child: ref("styrelsen", "prylen.kth.se")},
		},
	}

	got, err := newTestResolver(repo).GroupsOf(context.Background(), "pleb", at)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byID := map[string]Membership{}
	for _, m := range got {
		byID[m.Group.ID] = m
	}

	assert.Contains(t, byID, "styrelsen")
	assert.Contains(t, byID, "prylen")
	assert.Equal(t, []Ref{ref("styrelsen", "prylen.kth.se"), ref("prylen", "kth.se")}, byID["prylen"].Path)
}

func TestGroupsOf_CycleDoesNotInfiniteLoop(t *testing.T) {
	at := time.Now()
	repo := &fakeRepo{
		directByUser: map[string][]DirectMembership{
			"pleb": {{Username: "pleb", Group: ref("a", "kth.se"), From: at, Until: at}},
		},
		edges: []SubgroupEdge{
			{Parent: ref("b", "kth.se"), Child: ref("a", "kth.se")},
			{Parent: ref("a", "kth.se"), Child: ref("b", "kth.se")},
		},
	}

	got, err := newTestResolver(repo).GroupsOf(context.Background(), "pleb", at)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMembersOf_ManagerFlagIsFirstHopFromRoot(t *testing.T) {
	at := time.Now()
	root := ref("prylen", "kth.se")
	mid := ref("styrelsen", "prylen.kth.se")
	leaf := ref("ordf", "styrelsen.prylen.kth.se")

	repo := &fakeRepo{
		edges: []SubgroupEdge{
			{Parent: root, Child: mid, Manager: true},
			{Parent: mid, Child: leaf, Manager: false},
		},
		directByGroups: []DirectMembership{
			{Username: "direct-member", Group: root, From: at, Until: at, Manager: false},
			{Username: "deep-member", Group: leaf, From: at, Until: at, Manager: false},
		},
	}

	got, err := newTestResolver(repo).MembersOf(context.Background(), root, at)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byUser := map[string]Member{}
	for _, m := range got {
		byUser[m.Username] = m
	}

	assert.False(t, byUser["direct-member"].Manager, "direct membership keeps its own manager bit")
	assert.True(t, byUser["deep-member"].Manager, "indirect member inherits the manager flag of the first hop from root, not the leaf edge")
}

func TestMembersOf_DiamondConvergenceYieldsOneRowPerPath(t *testing.T) {
	at := time.Now()
	root := ref("prylen", "kth.se")
	a := ref("a", "prylen.kth.se")
	b := ref("b", "prylen.kth.se")
	d := ref("d", "prylen.kth.se")

	repo := &fakeRepo{
		edges: []SubgroupEdge{
			{Parent: root, Child: a, Manager: true},
			{Parent: root, Child: b, Manager: false},
			{Parent: a, Child: d, Manager: false},
			{Parent: b, Child: d, Manager: false},
		},
		directByGroups: []DirectMembership{
			{Username: "pleb", Group: d, From: at, Until: at, Manager: false},
		},
	}

	got, err := newTestResolver(repo).MembersOf(context.Background(), root, at)
	require.NoError(t, err)
	require.Len(t, got, 2, "d is reachable via two distinct paths (through a and through b), each must surface as its own row")

	var viaA, viaB bool
	for _, m := range got {
		assert.Equal(t, "pleb", m.Username)
		switch m.Path[1] {
		case a:
			viaA = true
			assert.True(t, m.Manager, "the path through a inherits a's manager=true root hop")
		case b:
			viaB = true
			assert.False(t, m.Manager, "the path through b inherits b's manager=false root hop")
		default:
			t.Fatalf("unexpected second path element: %v", m.Path[1])
		}
	}
	assert.True(t, viaA)
	assert.True(t, viaB)
}
