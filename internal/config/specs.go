// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	LogFile  string `envconfig:"log_file" default:"log.txt"`

	ListenAddress string `envconfig:"listen_address" default:"0.0.0.0"`
	Port          int    `envconfig:"port" default:"8080"`

	Debug bool `envconfig:"debug" default:"false"`

	DSN string `envconfig:"dsn" required:"true"`

	// SecretKey is a hex-encoded key accepted for operational parity with
	// deployments that provision one; nothing in this codebase reads it
	// yet.
	SecretKey string `envconfig:"secret_key"`

	// Timezone drives the fixed local clock used by the group-membership
	// resolver's date windows: it is read once at process start and
	// never re-evaluated, so a running process never observes a timezone
	// rule change mid-flight.
	Timezone string `envconfig:"timezone" default:"Europe/Stockholm"`

	// IntegrationWorkers sizes the worker pool the integration runner fans
	// scheduled tasks out across.
	IntegrationWorkers int `envconfig:"integration_workers" default:"4"`

	// OIDCIssuer/OIDCClientID/OIDCClientSecret are accepted (and can be
	// overridden by flags) for operational parity with deployments that
	// still carry them in their environment, but nothing in this codebase
	// reads, validates or logs them: OIDC login is out of scope here.
	OIDCIssuer       string `envconfig:"oidc_issuer"`
	OIDCClientID     string `envconfig:"oidc_client_id"`
	OIDCClientSecret string `envconfig:"oidc_client_secret"`
}
