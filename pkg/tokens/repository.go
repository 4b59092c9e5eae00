// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tokens

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

func (r *Repository) FindBySecretHash(ctx context.Context, secretHashHex string) (*Token, error) {
	ctx, span := r.tracer.Start(ctx, "tokens.Repository.FindBySecretHash")
	defer span.End()

	row := r.db.Statement().
		Select("id", "secret_hash_hex", "system_id", "description", "expires_at", "last_used_at").
		From("api_tokens").
		Where(sq.Eq{"secret_hash_hex": secretHashHex}).
		QueryRowContext(ctx)

	t := new(Token)
	var expiresAt, lastUsedAt sql.NullTime
	err := row.Scan(&t.ID, &t.SecretHashHex, &t.SystemID, &t.Description, &expiresAt, &lastUsedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unable to scan FindBySecretHash result, %w", err)
	}

	if expiresAt.Valid {
		t.ExpiresAt = &expiresAt.Time
	}
	if lastUsedAt.Valid {
		t.LastUsedAt = &lastUsedAt.Time
	}

	return t, nil
}

// TouchLastUsed records a token's last use. Best-effort: the
// gate does not fail a request if this write fails, it only logs.
func (r *Repository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	ctx, span := r.tracer.Start(ctx, "tokens.Repository.TouchLastUsed")
	defer span.End()

	_, err := r.db.Statement().
		Update("api_tokens").
		Set("last_used_at", at).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("unable to update last_used_at, %w", err)
	}

	return nil
}

func NewRepository(db storage.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Repository {
	r := new(Repository)

	r.db = db
	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}
