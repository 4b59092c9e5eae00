// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package legacyapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/datasektionen/hive/internal/httperr"
	"github.com/datasektionen/hive/pkg/authorizer"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	httperr.Write(w, err, middleware.GetReqID(r.Context()))
}

func hashSecret(bearer string) (string, error) {
	return authorizer.HashSecret(bearer)
}
