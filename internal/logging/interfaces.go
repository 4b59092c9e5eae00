// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import "go.uber.org/zap"

// LoggerInterface is the logging contract used throughout the codebase, it
// mirrors the zap.SugaredLogger surface plus a Security level whose entries
// are tagged so they can be filtered independently from ordinary request
// logs. The authorization gate does not log its denials through it.
type LoggerInterface interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(template string, args ...interface{})
	Security(args ...interface{})
	Desugar() *zap.Logger
}
