// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package permissions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datasektionen/hive/internal/clock"
	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/tracing"
	"github.com/datasektionen/hive/pkg/groups"
	"github.com/datasektionen/hive/pkg/storage"
)

type fakePermRepo struct {
	perm        *Permission
	assignments []Assignment
}

func (f *fakePermRepo) FindPermission(ctx context.Context, systemID, permID string) (*Permission, error) {
	if f.perm == nil {
		return nil, errPermNotFound
	}
	return f.perm, nil
}

func (f *fakePermRepo) FindAssignments(ctx context.Context, systemID string, groupRefs []groups.Ref, tokenID *string) ([]Assignment, error) {
	return f.assignments, nil
}

// errPermNotFound is what the real repository returns for an unknown
// permission.
var errPermNotFound = storage.ErrNotFound

type fakeMembers struct{}

func (f *fakeMembers) GroupsOf(ctx context.Context, username string, at time.Time) ([]groups.Membership, error) {
	return []groups.Membership{{Group: groups.Ref{ID: "prylen", Domain: "kth.se"}}}, nil
}

func (f *fakeMembers) MembersOf(ctx context.Context, ref groups.Ref, at time.Time) ([]groups.Member, error) {
	return nil, nil
}

func newTestPermResolver(repo *fakePermRepo) *Resolver {
	tracer := tracing.NewTracer(tracing.NewConfig(false, "", "", logging.NewNoopLogger()))
	return NewResolver(repo, &fakeMembers{}, clock.New("UTC"), tracer, logging.NewNoopLogger())
}

func scopePtr(s string) *string { return &s }

func TestPermsOf_UnscopedAssignmentsFoldToOneNullGrant(t *testing.T) {
	repo := &fakePermRepo{
		assignments: []Assignment{
			{PermID: "view", Group: &groups.Ref{ID: "prylen", Domain: "kth.se"}},
			{PermID: "view", Group: &groups.Ref{ID: "prylen", Domain: "kth.se"}},
		},
	}

	grants, err := newTestPermResolver(repo).PermsOf(context.Background(), UserPrincipal("pleb"), "sys")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, "view", grants[0].PermID)
	assert.Nil(t, grants[0].Scope)
}

func TestPermsOf_ScopedAssignmentsKeepDistinctScopes(t *testing.T) {
	repo := &fakePermRepo{
		assignments: []Assignment{
			{PermID: "edit", Scope: scopePtr("funktionar")},
			{PermID: "edit", Scope: scopePtr("styrelsen")},
		},
	}

	grants, err := newTestPermResolver(repo).PermsOf(context.Background(), UserPrincipal("pleb"), "sys")
	require.NoError(t, err)
	require.Len(t, grants, 2)
	assert.Equal(t, "funktionar", *grants[0].Scope, "ordered lexicographically by scope")
	assert.Equal(t, "styrelsen", *grants[1].Scope)
}

func TestPermsOf_WildcardScopeDominatesOtherScopes(t *testing.T) {
	repo := &fakePermRepo{
		assignments: []Assignment{
			{PermID: "edit", Scope: scopePtr("funktionar")},
			{PermID: "edit", Scope: scopePtr(WildcardScope)},
		},
	}

	grants, err := newTestPermResolver(repo).PermsOf(context.Background(), UserPrincipal("pleb"), "sys")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, WildcardScope, *grants[0].Scope)
}

func TestHas_UnscopedPermIgnoresRequestedScope(t *testing.T) {
	repo := &fakePermRepo{
		perm:        &Permission{SystemID: "sys", PermID: "view", HasScope: false},
		assignments: []Assignment{{PermID: "view"}},
	}

	ok, err := newTestPermResolver(repo).Has(context.Background(), UserPrincipal("pleb"), "sys", "view", scopePtr("anything"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHas_ScopedPermWithoutRequestedScopeRequiresWildcard(t *testing.T) {
	repo := &fakePermRepo{
		perm:        &Permission{SystemID: "sys", PermID: "edit", HasScope: true},
		assignments: []Assignment{{PermID: "edit", Scope: scopePtr("funktionar")}},
	}

	ok, err := newTestPermResolver(repo).Has(context.Background(), UserPrincipal("pleb"), "sys", "edit", nil)
	require.NoError(t, err)
	assert.False(t, ok, "a scoped perm grant for a specific scope doesn't satisfy an unscoped has() check")
}

func TestHas_MissingPermissionIsFalseNotError(t *testing.T) {
	repo := &fakePermRepo{perm: nil}

	ok, err := newTestPermResolver(repo).Has(context.Background(), UserPrincipal("pleb"), "sys", "nonexistent", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
