// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/monitoring"
	"github.com/datasektionen/hive/internal/tracing"
	"github.com/datasektionen/hive/pkg/groups"
	"github.com/datasektionen/hive/pkg/storage"
)

type Repository struct {
	db storage.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func (r *Repository) FindTag(ctx context.Context, ref Ref) (*Tag, error) {
	ctx, span := r.tracer.Start(ctx, "tags.Repository.FindTag")
	defer span.End()

	row := r.db.Statement().
		Select("system_id", "tag_id", "supports_users", "supports_groups", "has_content", "description").
		From("tags").
		Where(sq.Eq{"system_id": ref.SystemID, "tag_id": ref.TagID}).
		QueryRowContext(ctx)

	t := new(Tag)
	err := row.Scan(&t.SystemID, &t.TagID, &t.SupportsUsers, &t.SupportsGroups, &t.HasContent, &t.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unable to scan FindTag result, %w", err)
	}

	return t, nil
}

func (r *Repository) FindAssignmentsByUser(ctx context.Context, systemID, username string) ([]Assignment, error) {
	ctx, span := r.tracer.Start(ctx, "tags.Repository.FindAssignmentsByUser")
	defer span.End()

	rows, err := r.db.Statement().
		Select("id", "system_id", "tag_id", "content", "username", "group_id", "group_domain").
		From("tag_assignments").
		Where(sq.Eq{"system_id": systemID, "username": username}).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to list tag assignments by user, %w", err)
	}
	defer rows.Close()

	return scanAssignments(rows)
}

func (r *Repository) FindAssignmentsByGroup(ctx context.Context, systemID string, group groups.Ref) ([]Assignment, error) {
	ctx, span := r.tracer.Start(ctx, "tags.Repository.FindAssignmentsByGroup")
	defer span.End()

	rows, err := r.db.Statement().
		Select("id", "system_id", "tag_id", "content", "username", "group_id", "group_domain").
		From("tag_assignments").
		Where(sq.Eq{"system_id": systemID, "group_id": group.ID, "group_domain": group.Domain}).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to list tag assignments by group, %w", err)
	}
	defer rows.Close()

	return scanAssignments(rows)
}

// FindAssignmentsByTags returns every assignment whose tag is in refs:
// the base rows tagged_in needs once it has computed a queried tag's
// descendant closure.
func (r *Repository) FindAssignmentsByTags(ctx context.Context, refs []Ref) ([]Assignment, error) {
	ctx, span := r.tracer.Start(ctx, "tags.Repository.FindAssignmentsByTags")
	defer span.End()

	if len(refs) == 0 {
		return nil, nil
	}

	or := sq.Or{}
	for _, ref := range refs {
		or = append(or, sq.Eq{"system_id": ref.SystemID, "tag_id": ref.TagID})
	}

	rows, err := r.db.Statement().
		Select("id", "system_id", "tag_id", "content", "username", "group_id", "group_domain").
		From("tag_assignments").
		Where(or).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to list tag assignments by tags, %w", err)
	}
	defer rows.Close()

	return scanAssignments(rows)
}

func scanAssignments(rows *sql.Rows) ([]Assignment, error) {
	assignments := make([]Assignment, 0)
	for rows.Next() {
		var (
			a                    Assignment
			content              sql.NullString
			username             sql.NullString
			groupID, groupDomain sql.NullString
		)

		if err := rows.Scan(&a.ID, &a.Tag.SystemID, &a.Tag.TagID, &content, &username, &groupID, &groupDomain); err != nil {
			return nil, fmt.Errorf("unable to scan tag assignment result, %w", err)
		}

		if content.Valid {
			c := content.String
			a.Content = &c
		}
		if username.Valid {
			u := username.String
			a.Username = &u
		}
		if groupID.Valid && groupDomain.Valid {
			a.Group = &groups.Ref{ID: groupID.String, Domain: groupDomain.String}
		}

		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// FindAllSubtagEdges loads the whole subtag edge set for systemID (see
// groups.Repository.FindAllSubgroupEdges for the cycle-tolerance rationale).
func (r *Repository) FindAllSubtagEdges(ctx context.Context, systemID string) ([]SubtagEdge, error) {
	ctx, span := r.tracer.Start(ctx, "tags.Repository.FindAllSubtagEdges")
	defer span.End()

	rows, err := r.db.Statement().
		Select("system_id", "parent_tag_id", "child_tag_id").
		From("subtag_edges").
		Where(sq.Eq{"system_id": systemID}).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to list subtag edges, %w", err)
	}
	defer rows.Close()

	edges := make([]SubtagEdge, 0)
	for rows.Next() {
		var e SubtagEdge
		if err := rows.Scan(&e.SystemID, &e.Parent, &e.Child); err != nil {
			return nil, fmt.Errorf("unable to scan subtag edge result, %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func NewRepository(db storage.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Repository {
	r := new(Repository)

	r.db = db
	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}
