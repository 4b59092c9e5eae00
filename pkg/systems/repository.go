// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package systems

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *Repository) FindSystem(ctx context.Context, id string) (*System, error) {
	ctx, span := r.tracer.Start(ctx, "systems.Repository.FindSystem")
	defer span.End()

	row := r.db.Statement().
		Select("id", "description").
		From("systems").
		Where("id = ?", id).
		QueryRowContext(ctx)

	s := new(System)
	err := row.Scan(&s.ID, &s.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unable to scan FindSystem result, %w", err)
	}

	return s, nil
}

func (r *Repository) ListSystems(ctx context.Context) ([]System, error) {
	ctx, span := r.tracer.Start(ctx, "systems.Repository.ListSystems")
	defer span.End()

	rows, err := r.db.Statement().
		Select("id", "description").
		From("systems").
		OrderBy("id").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to list systems, %w", err)
	}
	defer rows.Close()

	systems := make([]System, 0)
	for rows.Next() {
		var s System
		if err := rows.Scan(&s.ID, &s.Description); err != nil {
			return nil, fmt.Errorf("unable to scan system result, %w", err)
		}
		systems = append(systems, s)
	}
	return systems, rows.Err()
}

func NewRepository(db storage.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Repository {
	r := new(Repository)

	r.db = db
	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}
