// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/datasektionen/hive/internal/logging"
)

// Middleware wraps monitor/logger to produce an http middleware recording
// per-request response time.
type Middleware struct {
	monitor MonitorInterface
	logger  logging.LoggerInterface
}

func (m *Middleware) ResponseTime() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			labels := map[string]string{
				"method": r.Method,
				"path":   r.URL.Path,
				"status": strconv.Itoa(ww.Status()),
			}

			metric, err := m.monitor.GetResponseTimeMetric(labels)
			if err != nil {
				m.logger.Errorf("unable to record response time metric: %v", err)
				return
			}

			metric.Observe(time.Since(start).Seconds())
		})
	}
}

func NewMiddleware(monitor MonitorInterface, logger logging.LoggerInterface) *Middleware {
	m := new(Middleware)

	m.monitor = monitor
	m.logger = logger

	return m
}
