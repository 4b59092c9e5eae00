// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package integrations implements the scheduled-task runner:
// for each configured task in each system, at most one run is ever active
// at a time, enforced by the database rather than by in-process locking
// alone, since the runner may be scaled across processes.
package integrations

import "time"

// LogKind is one of the three severities a run's log entries carry.
type LogKind string

const (
	LogError   LogKind = "error"
	LogWarning LogKind = "warning"
	LogInfo    LogKind = "info"
)

// Run is one IntegrationRun row: a single attempt of one task
// within one integration, open (EndStamp == nil) while Running.
type Run struct {
	ID            int64
	IntegrationID string
	TaskID        string
	StartStamp    time.Time
	EndStamp      *time.Time
	Succeeded     *bool
}

// Active reports whether this run is still open (Running state).
func (r *Run) Active() bool {
	return r.EndStamp == nil
}

// LogEntry is one IntegrationRunLog row.
type LogEntry struct {
	ID      int64
	RunID   int64
	Kind    LogKind
	Stamp   time.Time
	Message string
}
