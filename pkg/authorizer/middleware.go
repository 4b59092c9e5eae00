// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorizer

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/datasektionen/hive/internal/clock"
	"github.com/datasektionen/hive/internal/httperr"
	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/tracing"
	"github.com/datasektionen/hive/pkg/permissions"
	"github.com/datasektionen/hive/pkg/storage"
	"github.com/datasektionen/hive/pkg/tokens"
)

// Middleware implements the authorization gate: every v1
// request carries a bearer secret that resolves to a token, whose
// permission set in the self ("hive") system must carry the endpoint's
// declared required permission.
type Middleware struct {
	tokens      tokens.RepositoryInterface
	permissions permissions.ResolverInterface
	clock       *clock.Clock
	selfSystem  string

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func (m *Middleware) bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	return strings.TrimPrefix(header, "Bearer "), true
}

// Authenticate resolves the bearer secret to a Caller and stores it on the
// request context. It does not itself enforce any permission; pair it with
// RequirePermission on the routes that need one.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.tracer.Start(r.Context(), "authorizer.Middleware.Authenticate")
		defer span.End()

		raw, found := m.bearerToken(r)
		if !found {
			httperr.Write(w, httperr.New(httperr.KindAPIKeyUnknown, nil), "")
			return
		}

		hash, err := HashSecret(raw)
		if err != nil {
			httperr.Write(w, httperr.New(httperr.KindAPIKeyUnknown, err), "")
			return
		}

		token, err := m.tokens.FindBySecretHash(ctx, hash)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httperr.Write(w, httperr.New(httperr.KindAPIKeyUnknown, err), "")
				return
			}
			httperr.Write(w, httperr.New(httperr.KindInternal, err), "")
			return
		}

		if token.Expired(m.clock.Now()) {
			httperr.Write(w, httperr.New(httperr.KindAPIKeyExpired, nil), "")
			return
		}

		// best-effort, may be coalesced; detached from
		// the request context so cancellation on response flush doesn't
		// race the write.
		go func(id string, at clock.Clock) {
			if err := m.tokens.TouchLastUsed(context.Background(), id, at.Now()); err != nil {
				m.logger.Warnf("unable to update token last_used_at: %v", err)
			}
		}(token.ID, *m.clock)

		caller := &Caller{TokenID: token.ID, SystemID: token.SystemID}
		next.ServeHTTP(w, r.WithContext(CallerContext(ctx, caller)))
	})
}

// RequirePermission enforces that the authenticated caller holds permID
// (unscoped) in the self system.
func (m *Middleware) RequirePermission(permID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), "authorizer.Middleware.RequirePermission")
			defer span.End()

			caller := CallerFromContext(ctx)
			if caller == nil {
				httperr.Write(w, httperr.New(httperr.KindAPIKeyUnknown, nil), "")
				return
			}

			ok, err := m.permissions.Has(ctx, caller.Principal(), m.selfSystem, permID, nil)
			if err != nil {
				httperr.Write(w, httperr.New(httperr.KindInternal, err), "")
				return
			}
			if !ok {
				httperr.Write(w, httperr.New(httperr.KindForbidden, nil), "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SelfSystem is the "hive" system permissions are resolved against for gate
// checks specifically, as distinct from the relevant system (the
// authenticated caller's own system_id) used by the resolver calls
// themselves.
const SelfSystem = "hive"

func NewMiddleware(tokensRepo tokens.RepositoryInterface, perms permissions.ResolverInterface, clk *clock.Clock, tracer tracing.TracingInterface, logger logging.LoggerInterface) *Middleware {
	m := new(Middleware)

	m.tokens = tokensRepo
	m.permissions = perms
	m.clock = clk
	m.selfSystem = SelfSystem
	m.tracer = tracer
	m.logger = logger

	return m
}
