// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package legacyapi implements the deprecated, unauthenticated v0 API:
// same resolver semantics as the v1 surface, encoded as
// per-system string arrays (perm_id, or perm_id:scope) instead of the v1
// JSON object shape.
package legacyapi

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/datasektionen/hive/internal/httperr"
	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/monitoring"
	"github.com/datasektionen/hive/internal/tracing"
	"github.com/datasektionen/hive/internal/validation"
	"github.com/datasektionen/hive/pkg/permissions"
	"github.com/datasektionen/hive/pkg/storage"
	"github.com/datasektionen/hive/pkg/systems"
	"github.com/datasektionen/hive/pkg/tokens"
)

type API struct {
	resolver permissions.ResolverInterface
	systems  systems.RepositoryInterface
	tokens   tokens.RepositoryInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Get("/api/v0/user/{u}", a.handleUser(userPrincipal))
	mux.Get("/api/v0/user/{u}/{sys}", a.handleUserSystem(userPrincipal))
	mux.Get("/api/v0/user/{u}/{sys}/{perm_key}", a.handleUserSystemPerm(userPrincipal))

	mux.Get("/api/v0/token/{u}", a.handleUser(a.tokenPrincipal))
	mux.Get("/api/v0/token/{u}/{sys}", a.handleUserSystem(a.tokenPrincipal))
	mux.Get("/api/v0/token/{u}/{sys}/{perm_key}", a.handleUserSystemPerm(a.tokenPrincipal))
}

type principalFunc func(r *http.Request) (permissions.Principal, error)

func userPrincipal(r *http.Request) (permissions.Principal, error) {
	username := chi.URLParam(r, "u")
	if !validation.IsUsername(username) {
		return permissions.Principal{}, httperr.New(httperr.KindNotFoundUser, nil)
	}
	return permissions.UserPrincipal(username), nil
}

func (a *API) tokenPrincipal(r *http.Request) (permissions.Principal, error) {
	secret := chi.URLParam(r, "u")
	hash, err := hashSecret(secret)
	if err != nil {
		return permissions.Principal{}, httperr.New(httperr.KindAPIKeyUnknown, err)
	}

	token, err := a.tokens.FindBySecretHash(r.Context(), hash)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return permissions.Principal{}, httperr.New(httperr.KindAPIKeyUnknown, err)
		}
		return permissions.Principal{}, httperr.New(httperr.KindInternal, err)
	}

	return permissions.TokenPrincipal(token.ID), nil
}

// encodeGrants renders perms_of's result in the v0 string encoding:
// "perm_id" for unscoped, "perm_id:scope" for scoped, sorted.
func (a *API) encodeGrants(grants []permissions.Grant) []string {
	encoded := make([]string, len(grants))
	for i, g := range grants {
		if g.Scope == nil {
			encoded[i] = g.PermID
			continue
		}
		encoded[i] = g.PermID + ":" + *g.Scope
	}
	sort.Strings(encoded)
	return encoded
}

// handleUser returns every system the principal holds any permission in,
// keyed by system id.
func (a *API) handleUser(resolve principalFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := resolve(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		all, err := a.systems.ListSystems(r.Context())
		if err != nil {
			writeError(w, r, httperr.New(httperr.KindInternal, err))
			return
		}

		result := make(map[string][]string, len(all))
		for _, sys := range all {
			grants, err := a.resolver.PermsOf(r.Context(), principal, sys.ID)
			if err != nil {
				writeError(w, r, httperr.New(httperr.KindInternal, err))
				return
			}
			if len(grants) == 0 {
				continue
			}
			result[sys.ID] = a.encodeGrants(grants)
		}

		writeJSON(w, result)
	}
}

func (a *API) handleUserSystem(resolve principalFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := resolve(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		sysID := chi.URLParam(r, "sys")

		grants, err := a.resolver.PermsOf(r.Context(), principal, sysID)
		if err != nil {
			writeError(w, r, httperr.New(httperr.KindInternal, err))
			return
		}

		writeJSON(w, a.encodeGrants(grants))
	}
}

func (a *API) handleUserSystemPerm(resolve principalFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := resolve(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		sysID := chi.URLParam(r, "sys")
		permID, scope := decodePermKey(chi.URLParam(r, "perm_key"))

		ok, err := a.resolver.Has(r.Context(), principal, sysID, permID, scope)
		if err != nil {
			writeError(w, r, httperr.New(httperr.KindInternal, err))
			return
		}

		writeJSON(w, ok)
	}
}

// decodePermKey splits the v0 "perm_id" or "perm_id:scope" path segment.
func decodePermKey(key string) (permID string, scope *string) {
	permID, s, found := strings.Cut(key, ":")
	if !found {
		return permID, nil
	}
	return permID, &s
}

func NewAPI(resolver permissions.ResolverInterface, systemsRepo systems.RepositoryInterface, tokensRepo tokens.RepositoryInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.resolver = resolver
	a.systems = systemsRepo
	a.tokens = tokensRepo
	a.logger = logger
	a.tracer = tracer
	a.monitor = monitor

	return a
}
