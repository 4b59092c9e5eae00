// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package integrations

import (
	"context"
	"time"
)

type RepositoryInterface interface {
	// StartRun inserts a new open run row. A unique-violation on the
	// partial index means a run is already active for this task; the
	// repository maps that into ErrAlreadyRunning rather than a generic
	// database error.
	StartRun(ctx context.Context, integrationID, taskID string) (*Run, error)
	FinishRun(ctx context.Context, runID int64, succeeded bool, at time.Time) error
	AppendLog(ctx context.Context, runID int64, kind LogKind, message string, at time.Time) error

	// ReconcileOrphans stamps every still-open run as failed at startupTime.
	ReconcileOrphans(ctx context.Context, startupTime time.Time) (int, error)
}
