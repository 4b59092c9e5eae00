// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"go.uber.org/zap"
)

type noopLogger struct {
	*zap.SugaredLogger
}

func (l *noopLogger) Security(args ...interface{}) {}

func (l *noopLogger) Desugar() *zap.Logger {
	return l.SugaredLogger.Desugar()
}

// NewNoopLogger returns a LoggerInterface that discards everything, for tests.
func NewNoopLogger() LoggerInterface {
	return &noopLogger{SugaredLogger: zap.NewNop().Sugar()}
}
