// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tags

import (
	"context"
	"fmt"
	"sort"

	"github.com/datasektionen/hive/internal/clock"
	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/tracing"
	"github.com/datasektionen/hive/pkg/groups"
)

// TaggedGroup is one row of tagged_groups/tagged_user_memberships: the
// localized name of a group effectively tagged, alongside the content
// surfaced at that tag (nil on indirect propagation).
type TaggedGroup struct {
	GroupName   string
	GroupID     string
	GroupDomain string
	Content     *string
}

// TaggedUser is one row of tagged_users.
type TaggedUser struct {
	Username string
	Content  *string
}

// Lister implements the tagged_groups/tagged_users/tagged_user_memberships
// listing contracts, layered on top of Resolver.TaggedIn.
type Lister struct {
	resolver ResolverInterface
	tags     RepositoryInterface
	groups   groups.RepositoryInterface
	members  groups.ResolverInterface
	clock    *clock.Clock

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

// TaggedGroups lists every group effectively tagged with ref, localized
// to lang, sorted lexicographically by (name, domain, id, content). Empty
// if the tag does not support groups.
func (l *Lister) TaggedGroups(ctx context.Context, ref Ref, lang string) ([]TaggedGroup, error) {
	ctx, span := l.tracer.Start(ctx, "tags.Lister.TaggedGroups")
	defer span.End()

	tag, err := l.tags.FindTag(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !tag.SupportsGroups {
		return []TaggedGroup{}, nil
	}

	effective, err := l.resolver.TaggedIn(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve tagged entities: %w", err)
	}

	rows := make([]TaggedGroup, 0, len(effective))
	for _, e := range effective {
		if e.Group == nil {
			continue
		}

		group, err := l.groups.FindGroup(ctx, *e.Group)
		if err != nil {
			// an orphaned assignment is treated as absent, never a failure.
			continue
		}

		rows = append(rows, TaggedGroup{
			GroupName:   group.Name(lang),
			GroupID:     group.ID,
			GroupDomain: group.Domain,
			Content:     e.Content,
		})
	}

	sortTaggedGroups(rows)
	return rows, nil
}

// TaggedUsers lists every user effectively tagged with ref, sorted
// lexicographically by (username, content). Empty if the tag does not
// support users.
func (l *Lister) TaggedUsers(ctx context.Context, ref Ref) ([]TaggedUser, error) {
	ctx, span := l.tracer.Start(ctx, "tags.Lister.TaggedUsers")
	defer span.End()

	tag, err := l.tags.FindTag(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !tag.SupportsUsers {
		return []TaggedUser{}, nil
	}

	effective, err := l.resolver.TaggedIn(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve tagged entities: %w", err)
	}

	rows := make([]TaggedUser, 0, len(effective))
	for _, e := range effective {
		if e.Username == nil {
			continue
		}
		rows = append(rows, TaggedUser{Username: *e.Username, Content: e.Content})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Username != rows[j].Username {
			return rows[i].Username < rows[j].Username
		}
		return contentOrEmpty(rows[i].Content) < contentOrEmpty(rows[j].Content)
	})

	return rows, nil
}

// TaggedUserMemberships restricts tagged_groups(ref, lang) to the groups
// username is a direct or indirect member of at the current date. A user's
// own direct tag assignments are deliberately excluded: only the group
// membership intersection counts.
func (l *Lister) TaggedUserMemberships(ctx context.Context, ref Ref, username string, lang string) ([]TaggedGroup, error) {
	ctx, span := l.tracer.Start(ctx, "tags.Lister.TaggedUserMemberships")
	defer span.End()

	groupsOf, err := l.members.GroupsOf(ctx, username, l.clock.Today())
	if err != nil {
		return nil, fmt.Errorf("unable to resolve user's groups: %w", err)
	}

	memberOf := make(map[groups.Ref]bool, len(groupsOf))
	for _, m := range groupsOf {
		memberOf[m.Group] = true
	}

	all, err := l.TaggedGroups(ctx, ref, lang)
	if err != nil {
		return nil, err
	}

	rows := make([]TaggedGroup, 0, len(all))
	for _, row := range all {
		if memberOf[groups.Ref{ID: row.GroupID, Domain: row.GroupDomain}] {
			rows = append(rows, row)
		}
	}

	return rows, nil
}

func sortTaggedGroups(rows []TaggedGroup) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.GroupName != b.GroupName {
			return a.GroupName < b.GroupName
		}
		if a.GroupDomain != b.GroupDomain {
			return a.GroupDomain < b.GroupDomain
		}
		if a.GroupID != b.GroupID {
			return a.GroupID < b.GroupID
		}
		return contentOrEmpty(a.Content) < contentOrEmpty(b.Content)
	})
}

func contentOrEmpty(content *string) string {
	if content == nil {
		return ""
	}
	return *content
}

func NewLister(resolver ResolverInterface, tags RepositoryInterface, groupsRepo groups.RepositoryInterface, members groups.ResolverInterface, clk *clock.Clock, tracer tracing.TracingInterface, logger logging.LoggerInterface) *Lister {
	l := new(Lister)

	l.resolver = resolver
	l.tags = tags
	l.groups = groupsRepo
	l.members = members
	l.clock = clk
	l.tracer = tracer
	l.logger = logger

	return l
}
