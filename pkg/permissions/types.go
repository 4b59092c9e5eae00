// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package permissions

import "github.com/datasektionen/hive/pkg/groups"

// Permission is the Permission entity: a (system_id, perm_id) pair
// declaring whether assignments of it carry a scope.
type Permission struct {
	SystemID    string
	PermID      string
	HasScope    bool
	Description string
}

// Assignment is a single PermissionAssignment row. Exactly one of
// Group/APITokenID is set; Scope is nil for unscoped permissions.
type Assignment struct {
	ID        int64
	SystemID  string
	PermID    string
	Scope     *string
	Group     *groups.Ref
	APITokenID *string
}

// Grant is one resolved (perm_id, scope) entry of perms_of's result set.
// Scope is nil for an unscoped permission, or the literal "*" once the
// wildcard has dominated every other scope for that perm_id.
type Grant struct {
	PermID string
	Scope  *string
}

// ScopeOrEmpty returns Scope's value or "" for ordering purposes, matching
// this package's "null-scope treated as empty string" ordering rule.
func (g Grant) ScopeOrEmpty() string {
	if g.Scope == nil {
		return ""
	}
	return *g.Scope
}

const WildcardScope = "*"

// Principal is either a user (resolved via the group resolver) or an API
// token (resolved directly to its id); exactly one field is set.
type Principal struct {
	Username *string
	TokenID  *string
}

func UserPrincipal(username string) Principal {
	return Principal{Username: &username}
}

func TokenPrincipal(tokenID string) Principal {
	return Principal{TokenID: &tokenID}
}
