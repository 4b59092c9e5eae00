// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/datasektionen/hive/internal/httperr"
	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/monitoring"
	"github.com/datasektionen/hive/internal/tracing"
	"github.com/datasektionen/hive/internal/validation"
	"github.com/datasektionen/hive/pkg/storage"
	"github.com/datasektionen/hive/pkg/tags"
)

// TagsAPI serves the /tagged/{t}/... listing endpoints.
type TagsAPI struct {
	lister *tags.Lister

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func (a *TagsAPI) RegisterEndpoints(router chi.Router) {
	router.Get("/api/v1/tagged/{t}/groups", a.handleGroups)
	router.Get("/api/v1/tagged/{t}/memberships/{u}", a.handleMemberships)
	router.Get("/api/v1/tagged/{t}/users", a.handleUsers)
}

func (a *TagsAPI) tagRef(r *http.Request) tags.Ref {
	return tags.Ref{SystemID: relevantSystem(r), TagID: chi.URLParam(r, "t")}
}

func (a *TagsAPI) handleGroups(w http.ResponseWriter, r *http.Request) {
	rows, err := a.lister.TaggedGroups(r.Context(), a.tagRef(r), lang(r))
	if err != nil {
		writeError(w, r, tagLookupError(err))
		return
	}

	writeJSON(w, taggedEntries(rows))
}

func (a *TagsAPI) handleMemberships(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "u")
	if !validation.IsUsername(username) {
		writeError(w, r, httperr.New(httperr.KindNotFoundUser, nil))
		return
	}

	rows, err := a.lister.TaggedUserMemberships(r.Context(), a.tagRef(r), username, lang(r))
	if err != nil {
		writeError(w, r, tagLookupError(err))
		return
	}

	writeJSON(w, taggedEntries(rows))
}

func (a *TagsAPI) handleUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := a.lister.TaggedUsers(r.Context(), a.tagRef(r))
	if err != nil {
		writeError(w, r, tagLookupError(err))
		return
	}

	entries := make([]TaggedUserEntry, len(rows))
	for i, row := range rows {
		entries[i] = TaggedUserEntry{Username: row.Username, TagContent: row.Content}
	}

	writeJSON(w, entries)
}

// tagLookupError maps a Lister error to the right httperr kind: an unknown
// tag is a 404, anything else (a transient database failure) is a 500.
func tagLookupError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return httperr.New(httperr.KindNotFoundTag, err)
	}
	return httperr.New(httperr.KindInternal, err)
}

func taggedEntries(rows []tags.TaggedGroup) []TaggedEntry {
	entries := make([]TaggedEntry, len(rows))
	for i, row := range rows {
		entries[i] = TaggedEntry{
			GroupName:   row.GroupName,
			GroupID:     row.GroupID,
			GroupDomain: row.GroupDomain,
			TagContent:  row.Content,
		}
	}
	return entries
}

func NewTagsAPI(lister *tags.Lister, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *TagsAPI {
	a := new(TagsAPI)

	a.lister = lister
	a.logger = logger
	a.tracer = tracer
	a.monitor = monitor

	return a
}
