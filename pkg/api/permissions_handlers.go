// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package api

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/datasektionen/hive/internal/httperr"
	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/monitoring"
	"github.com/datasektionen/hive/internal/tracing"
	"github.com/datasektionen/hive/internal/validation"
	"github.com/datasektionen/hive/pkg/permissions"
	"github.com/datasektionen/hive/pkg/tokens"
)

// PermissionsAPI serves the /user/{u}/... and /token/{sec}/... permission
// introspection endpoints.
type PermissionsAPI struct {
	resolver permissions.ResolverInterface
	tokens   tokens.RepositoryInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func (a *PermissionsAPI) RegisterEndpoints(router chi.Router) {
	router.Get("/api/v1/user/{u}/permissions", a.handlePermissions(userPrincipal))
	router.Get("/api/v1/user/{u}/permission/{p}", a.handleHas(userPrincipal))
	router.Get("/api/v1/user/{u}/permission/{p}/scopes", a.handleScopes(userPrincipal))
	router.Get("/api/v1/user/{u}/permission/{p}/scope/{s}", a.handleHasScope(userPrincipal))

	router.Get("/api/v1/token/{u}/permissions", a.handlePermissions(a.tokenPrincipal))
	router.Get("/api/v1/token/{u}/permission/{p}", a.handleHas(a.tokenPrincipal))
	router.Get("/api/v1/token/{u}/permission/{p}/scopes", a.handleScopes(a.tokenPrincipal))
	router.Get("/api/v1/token/{u}/permission/{p}/scope/{s}", a.handleHasScope(a.tokenPrincipal))
}

type principalFunc func(r *http.Request) (permissions.Principal, error)

func userPrincipal(r *http.Request) (permissions.Principal, error) {
	username := chi.URLParam(r, "u")
	if !validation.IsUsername(username) {
		return permissions.Principal{}, httperr.New(httperr.KindNotFoundUser, nil)
	}
	return permissions.UserPrincipal(username), nil
}

func (a *PermissionsAPI) tokenPrincipal(r *http.Request) (permissions.Principal, error) {
	secret := chi.URLParam(r, "u")
	id, err := tokenPrincipalFromSecret(r, a.tokens, secret)
	if err != nil {
		return permissions.Principal{}, err
	}
	return permissions.TokenPrincipal(id), nil
}

func (a *PermissionsAPI) handlePermissions(resolve principalFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := resolve(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		grants, err := a.resolver.PermsOf(r.Context(), principal, relevantSystem(r))
		if err != nil {
			writeError(w, r, httperr.New(httperr.KindInternal, err))
			return
		}

		entries := make([]PermissionEntry, len(grants))
		for i, g := range grants {
			entries[i] = PermissionEntry{ID: g.PermID, Scope: g.Scope}
		}

		writeJSON(w, entries)
	}
}

func (a *PermissionsAPI) handleHas(resolve principalFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := resolve(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		permID := chi.URLParam(r, "p")

		ok, err := a.resolver.Has(r.Context(), principal, relevantSystem(r), permID, nil)
		if err != nil {
			writeError(w, r, httperr.New(httperr.KindInternal, err))
			return
		}

		writeJSON(w, ok)
	}
}

func (a *PermissionsAPI) handleHasScope(resolve principalFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := resolve(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		permID := chi.URLParam(r, "p")
		scope := chi.URLParam(r, "s")

		ok, err := a.resolver.Has(r.Context(), principal, relevantSystem(r), permID, &scope)
		if err != nil {
			writeError(w, r, httperr.New(httperr.KindInternal, err))
			return
		}

		writeJSON(w, ok)
	}
}

func (a *PermissionsAPI) handleScopes(resolve principalFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := resolve(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		permID := chi.URLParam(r, "p")

		grants, err := a.resolver.PermsOf(r.Context(), principal, relevantSystem(r))
		if err != nil {
			writeError(w, r, httperr.New(httperr.KindInternal, err))
			return
		}

		scopes := make([]string, 0)
		for _, g := range grants {
			if g.PermID != permID || g.Scope == nil {
				continue
			}
			scopes = append(scopes, *g.Scope)
		}
		sort.Strings(scopes)

		writeJSON(w, scopes)
	}
}

func NewPermissionsAPI(resolver permissions.ResolverInterface, tokensRepo tokens.RepositoryInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *PermissionsAPI {
	a := new(PermissionsAPI)

	a.resolver = resolver
	a.tokens = tokensRepo
	a.logger = logger
	a.tracer = tracer
	a.monitor = monitor

	return a
}
