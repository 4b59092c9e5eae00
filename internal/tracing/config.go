// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import "github.com/datasektionen/hive/internal/logging"

// Config bundles the startup-time settings NewTracer needs; kept as a
// struct (rather than passing each field) so the exporter fallback chain
// in NewTracer reads as a single decision over one object, matching how
// the rest of the codebase builds its component constructors.
type Config struct {
	Enabled bool

	OtelGRPCEndpoint string
	OtelHTTPEndpoint string

	Logger logging.LoggerInterface
}

func NewConfig(enabled bool, grpcEndpoint, httpEndpoint string, logger logging.LoggerInterface) *Config {
	c := new(Config)

	c.Enabled = enabled
	c.OtelGRPCEndpoint = grpcEndpoint
	c.OtelHTTPEndpoint = httpEndpoint
	c.Logger = logger

	return c
}
