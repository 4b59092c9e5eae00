// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package permissions

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

func (r *Repository) FindPermission(ctx context.Context, systemID, permID string) (*Permission, error) {
	ctx, span := r.tracer.Start(ctx, "permissions.Repository.FindPermission")
	defer span.End()

	row := r.db.Statement().
		Select("system_id", "perm_id", "has_scope", "description").
		From("permissions").
		Where(sq.Eq{"system_id": systemID, "perm_id": permID}).
		QueryRowContext(ctx)

	p := new(Permission)
	err := row.Scan(&p.SystemID, &p.PermID, &p.HasScope, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unable to scan FindPermission result, %w", err)
	}

	return p, nil
}

// FindAssignments returns every permission_assignments row for systemID
// whose group_ref is in groupRefs OR whose api_token_id matches tokenID
//. Either groupRefs or tokenID may be empty/nil.
func (r *Repository) FindAssignments(ctx context.Context, systemID string, groupRefs []groups.Ref, tokenID *string) ([]Assignment, error) {
	ctx, span := r.tracer.Start(ctx, "permissions.Repository.FindAssignments")
	defer span.End()

	or := sq.Or{}
	for _, ref := range groupRefs {
		or = append(or, sq.Eq{"group_id": ref.ID, "group_domain": ref.Domain})
	}
	if tokenID != nil {
		or = append(or, sq.Eq{"api_token_id": *tokenID})
	}
	if len(or) == 0 {
		return nil, nil
	}

	rows, err := r.db.Statement().
		Select("id", "system_id", "perm_id", "scope", "group_id", "group_domain", "api_token_id").
		From("permission_assignments").
		Where(sq.Eq{"system_id": systemID}).
		Where(or).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to list permission assignments, %w", err)
	}
	defer rows.Close()

	assignments := make([]Assignment, 0)
	for rows.Next() {
		var (
			a                      Assignment
			groupID, groupDomain   sql.NullString
			apiTokenID             sql.NullString
			scope                  sql.NullString
		)

		if err := rows.Scan(&a.ID, &a.SystemID, &a.PermID, &scope, &groupID, &groupDomain, &apiTokenID); err != nil {
			return nil, fmt.Errorf("unable to scan permission assignment result, %w", err)
		}

		if scope.Valid {
			s := scope.String
			a.Scope = &s
		}
		if groupID.Valid && groupDomain.Valid {
			a.Group = &groups.Ref{ID: groupID.String, Domain: groupDomain.String}
		}
		if apiTokenID.Valid {
			t := apiTokenID.String
			a.APITokenID = &t
		}

		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

func NewRepository(db storage.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Repository {
	r := new(Repository)

	r.db = db
	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}
