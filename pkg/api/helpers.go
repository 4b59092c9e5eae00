// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/datasektionen/hive/internal/httperr"
	"github.com/datasektionen/hive/pkg/authorizer"
	"github.com/datasektionen/hive/pkg/storage"
	"github.com/datasektionen/hive/pkg/tokens"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	httperr.Write(w, err, middleware.GetReqID(r.Context()))
}

// lang reads the ?lang= query parameter, defaulting to "sv".
func lang(r *http.Request) string {
	l := r.URL.Query().Get("lang")
	if l != "en" {
		return "sv"
	}
	return l
}

// relevantSystem is the system of the bearer token that authenticated the
// request: every resolver call in the v1 API is implicitly scoped to it.
func relevantSystem(r *http.Request) string {
	caller := authorizer.CallerFromContext(r.Context())
	if caller == nil {
		return ""
	}
	return caller.SystemID
}

// tokenPrincipalFromSecret resolves a bearer-style secret path parameter
// (used by the /token/{sec}/... mirror endpoints) down to the token it
// names, so its permission set can be queried the same way a user's is.
func tokenPrincipalFromSecret(r *http.Request, repo tokens.RepositoryInterface, secret string) (string, error) {
	hash, err := authorizer.HashSecret(secret)
	if err != nil {
		return "", httperr.New(httperr.KindAPIKeyUnknown, err)
	}

	token, err := repo.FindBySecretHash(r.Context(), hash)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", httperr.New(httperr.KindAPIKeyUnknown, err)
		}
		return "", httperr.New(httperr.KindInternal, err)
	}

	return token.ID, nil
}
