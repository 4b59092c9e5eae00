// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package integrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/monitoring"
	"github.com/datasektionen/hive/internal/tracing"
	"github.com/datasektionen/hive/pkg/storage"
)

// postgresUniqueViolation is the SQLSTATE for a violated unique/exclusion
// constraint; StartRun relies on it to detect that a run is already active.
const postgresUniqueViolation = "23505"

// ErrAlreadyRunning is returned by StartRun when a run for this
// (integration, task) pair is already open.
var ErrAlreadyRunning = fmt.Errorf("integrations: a run is already active for this task")

type Repository struct {
	db storage.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func (r *Repository) StartRun(ctx context.Context, integrationID, taskID string) (*Run, error) {
	ctx, span := r.tracer.Start(ctx, "integrations.Repository.StartRun")
	defer span.End()

	row := r.db.Statement().
		Insert("integration_runs").
		Columns("integration_id", "task_id").
		Values(integrationID, taskID).
		Suffix("RETURNING id, integration_id, task_id, start_stamp, end_stamp, succeeded").
		QueryRowContext(ctx)

	run := new(Run)
	var endStamp sql.NullTime
	var succeeded sql.NullBool
	err := row.Scan(&run.ID, &run.IntegrationID, &run.TaskID, &run.StartStamp, &endStamp, &succeeded)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == postgresUniqueViolation {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("unable to insert integration run, %w", err)
	}

	if endStamp.Valid {
		run.EndStamp = &endStamp.Time
	}
	if succeeded.Valid {
		run.Succeeded = &succeeded.Bool
	}

	return run, nil
}

func (r *Repository) FinishRun(ctx context.Context, runID int64, succeeded bool, at time.Time) error {
	ctx, span := r.tracer.Start(ctx, "integrations.Repository.FinishRun")
	defer span.End()

	_, err := r.db.Statement().
		Update("integration_runs").
		Set("end_stamp", at).
		Set("succeeded", succeeded).
		Where(sq.Eq{"id": runID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("unable to finish integration run, %w", err)
	}

	return nil
}

func (r *Repository) AppendLog(ctx context.Context, runID int64, kind LogKind, message string, at time.Time) error {
	ctx, span := r.tracer.Start(ctx, "integrations.Repository.AppendLog")
	defer span.End()

	_, err := r.db.Statement().
		Insert("integration_run_logs").
		Columns("run_id", "kind", "message", "stamp").
		Values(runID, string(kind), message, at).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("unable to append integration run log, %w", err)
	}

	return nil
}

// ReconcileOrphans stamps every run left open by a previous process as
// failed, so a killed runner never leaves a permanently-locked task
//.
func (r *Repository) ReconcileOrphans(ctx context.Context, startupTime time.Time) (int, error) {
	ctx, span := r.tracer.Start(ctx, "integrations.Repository.ReconcileOrphans")
	defer span.End()

	result, err := r.db.Statement().
		Update("integration_runs").
		Set("end_stamp", startupTime).
		Set("succeeded", false).
		Where("end_stamp IS NULL").
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("unable to reconcile orphaned integration runs, %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("unable to read rows affected, %w", err)
	}

	return int(n), nil
}

func NewRepository(db storage.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Repository {
	r := new(Repository)

	r.db = db
	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}
