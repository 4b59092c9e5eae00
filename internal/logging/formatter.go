// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// LogFormatter adapts LoggerInterface to chi's middleware.RequestLogger,
// logging through the injected interface rather than chi's built-in
// stdlib-log default formatter.
type LogFormatter struct {
	logger LoggerInterface
}

type logEntry struct {
	logger LoggerInterface
	req    *http.Request
}

func (f *LogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &logEntry{logger: f.logger, req: r}
}

func (e *logEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	e.logger.Infof(
		"%s %s -> %d (%d bytes) in %s",
		e.req.Method, e.req.URL.Path, status, bytes, elapsed,
	)
}

func (e *logEntry) Panic(v interface{}, stack []byte) {
	e.logger.Errorf("panic: %v\n%s", v, stack)
}

func NewLogFormatter(logger LoggerInterface) *LogFormatter {
	return &LogFormatter{logger: logger}
}
