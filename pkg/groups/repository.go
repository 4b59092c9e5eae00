// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package groups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/monitoring"
	"github.com/datasektionen/hive/internal/tracing"
	"github.com/datasektionen/hive/pkg/storage"
)

type Repository struct {
	db storage.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func (r *Repository) FindGroup(ctx context.Context, ref Ref) (*Group, error) {
	ctx, span := r.tracer.Start(ctx, "groups.Repository.FindGroup")
	defer span.End()

	row := r.db.Statement().
		Select("id", "domain", "name_sv", "name_en", "description_sv", "description_en").
		From("groups").
		Where(sq.Eq{"id": ref.ID, "domain": ref.Domain}).
		QueryRowContext(ctx)

	g := new(Group)
	err := row.Scan(&g.ID, &g.Domain, &g.NameSv, &g.NameEn, &g.DescriptionSv, &g.DescriptionEn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unable to scan FindGroup result, %w", err)
	}

	return g, nil
}

// FindDirectMembershipsByUser returns the base (leaf) rows groups_of starts
// its ascent from: every direct_memberships row for username active at at.
func (r *Repository) FindDirectMembershipsByUser(ctx context.Context, username string, at time.Time) ([]DirectMembership, error) {
	ctx, span := r.tracer.Start(ctx, "groups.Repository.FindDirectMembershipsByUser")
	defer span.End()

	rows, err := r.db.Statement().
		Select("id", "username", "group_id", "group_domain", "from_date", "until_date", "manager").
		From("direct_memberships").
		Where(sq.Eq{"username": username}).
		Where(sq.LtOrEq{"from_date": at}).
		Where(sq.GtOrEq{"until_date": at}).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to list direct memberships for user, %w", err)
	}
	defer rows.Close()

	return scanDirectMemberships(rows)
}

// FindDirectMembershipsByGroups returns every direct_memberships row active
// at at for any of the given group refs: the base rows members_of needs
// once it has computed a queried group's descendant set.
func (r *Repository) FindDirectMembershipsByGroups(ctx context.Context, refs []Ref, at time.Time) ([]DirectMembership, error) {
	ctx, span := r.tracer.Start(ctx, "groups.Repository.FindDirectMembershipsByGroups")
	defer span.End()

	if len(refs) == 0 {
		return nil, nil
	}

	or := sq.Or{}
	for _, ref := range refs {
		or = append(or, sq.Eq{"group_id": ref.ID, "group_domain": ref.Domain})
	}

	rows, err := r.db.Statement().
		Select("id", "username", "group_id", "group_domain", "from_date", "until_date", "manager").
		From("direct_memberships").
		Where(or).
		Where(sq.LtOrEq{"from_date": at}).
		Where(sq.GtOrEq{"until_date": at}).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to list direct memberships for groups, %w", err)
	}
	defer rows.Close()

	return scanDirectMemberships(rows)
}

func scanDirectMemberships(rows *sql.Rows) ([]DirectMembership, error) {
	memberships := make([]DirectMembership, 0)
	for rows.Next() {
		var m DirectMembership
		if err := rows.Scan(&m.ID, &m.Username, &m.Group.ID, &m.Group.Domain, &m.From, &m.Until, &m.Manager); err != nil {
			return nil, fmt.Errorf("unable to scan direct membership result, %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// FindAllSubgroupEdges loads the entire subgroup edge set. The membership
// resolver tolerates cycles per-path rather than with a global visited
// set, which only an in-memory traversal can do naturally; loading the
// whole graph once per call is acceptable because resolution is expected
// to run over realistic org-chart sizes.
func (r *Repository) FindAllSubgroupEdges(ctx context.Context) ([]SubgroupEdge, error) {
	ctx, span := r.tracer.Start(ctx, "groups.Repository.FindAllSubgroupEdges")
	defer span.End()

	rows, err := r.db.Statement().
		Select("parent_id", "parent_domain", "child_id", "child_domain", "manager").
		From("subgroup_edges").
		OrderBy("parent_id", "parent_domain", "child_id", "child_domain").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to list subgroup edges, %w", err)
	}
	defer rows.Close()

	edges := make([]SubgroupEdge, 0)
	for rows.Next() {
		var e SubgroupEdge
		if err := rows.Scan(&e.Parent.ID, &e.Parent.Domain, &e.Child.ID, &e.Child.Domain, &e.Manager); err != nil {
			return nil, fmt.Errorf("unable to scan subgroup edge result, %w", err)
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
