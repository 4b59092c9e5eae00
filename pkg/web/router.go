// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/datasektionen/hive/internal/clock"
	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/monitoring"
	"github.com/datasektionen/hive/internal/tracing"

	"github.com/datasektionen/hive/pkg/api"
	"github.com/datasektionen/hive/pkg/authorizer"
	"github.com/datasektionen/hive/pkg/groups"
	"github.com/datasektionen/hive/pkg/legacyapi"
	"github.com/datasektionen/hive/pkg/metrics"
	"github.com/datasektionen/hive/pkg/permissions"
	"github.com/datasektionen/hive/pkg/status"
	"github.com/datasektionen/hive/pkg/systems"
	"github.com/datasektionen/hive/pkg/tags"
	"github.com/datasektionen/hive/pkg/tokens"
)

const (
	permCheck = "api-check-permissions"
	permTags  = "api-list-tagged"
)

func middlewareCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// NewRouter assembles the full HTTP surface: unauthenticated status/metrics
// endpoints, the deprecated unauthenticated v0 API, and the gated v1 API
//.
func NewRouter(
	members groups.ResolverInterface,
	groupsRepo groups.RepositoryInterface,
	perms permissions.ResolverInterface,
	tagsResolver tags.ResolverInterface,
	tagsRepo tags.RepositoryInterface,
	tokensRepo tokens.RepositoryInterface,
	systemsRepo systems.RepositoryInterface,
	clk *clock.Clock,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS([]string{"*"}),
		middleware.RequestLogger(logging.NewLogFormatter(logger)),
	)
	router.Use(middlewares...)

	status.NewAPI(tracer, monitor, logger).RegisterEndpoints(router)
	metrics.NewAPI(logger).RegisterEndpoints(router)

	legacyapi.NewAPI(perms, systemsRepo, tokensRepo, tracer, monitor, logger).RegisterEndpoints(router)

	gate := authorizer.NewMiddleware(tokensRepo, perms, clk, tracer, logger)

	v1 := router.With(gate.Authenticate)

	permissionsGroup := v1.With(gate.RequirePermission(permCheck))
	api.NewPermissionsAPI(perms, tokensRepo, tracer, monitor, logger).RegisterEndpoints(permissionsGroup)

	taggedGroup := v1.With(gate.RequirePermission(permTags))
	tagsLister := tags.NewLister(tagsResolver, tagsRepo, groupsRepo, members, clk, tracer, logger)
	api.NewTagsAPI(tagsLister, tracer, monitor, logger).RegisterEndpoints(taggedGroup)
	api.NewGroupsAPI(members, tagsRepo, clk, tracer, monitor, logger).RegisterEndpoints(taggedGroup)

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
