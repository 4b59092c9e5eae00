// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tags

import "github.com/datasektionen/hive/pkg/groups"

// Ref identifies a tag by its composite (system_id, tag_id) key.
type Ref struct {
	SystemID string
	TagID    string
}

// Tag is the Tag entity.
type Tag struct {
	SystemID       string
	TagID          string
	SupportsUsers  bool
	SupportsGroups bool
	HasContent     bool
	Description    string
}

func (t *Tag) Ref() Ref {
	return Ref{SystemID: t.SystemID, TagID: t.TagID}
}

// Assignment is a TagAssignment row: exactly one of Username/Group
// is set. Content is non-empty when present.
type Assignment struct {
	ID       int64
	Tag      Ref
	Content  *string
	Username *string
	Group    *groups.Ref
}

// SubtagEdge declares that bearers of Child are to be treated as bearers
// of Parent for listing purposes.
type SubtagEdge struct {
	SystemID string
	Parent   string
	Child    string
}

// Effective is one resolved row of tags_of/tagged_in: the tag reached via
// propagation (possibly the assignment's own tag, the reflexive case) and
// the content to surface, stripped to nil unless the propagation was
// reflexive.
type Effective struct {
	Tag      Ref
	ID       *int64
	Content  *string
	Username *string
	Group    *groups.Ref
}
