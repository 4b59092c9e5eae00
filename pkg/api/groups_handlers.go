// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package api

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/datasektionen/hive/internal/clock"
	"github.com/datasektionen/hive/internal/httperr"
	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/monitoring"
	"github.com/datasektionen/hive/internal/tracing"
	"github.com/datasektionen/hive/internal/validation"
	"github.com/datasektionen/hive/pkg/groups"
	"github.com/datasektionen/hive/pkg/tags"
)

// GroupsAPI serves /group/{dom}/{id}/members. The relevant
// system must have tagged the group with at least one tag before it can
// list its members, keeping group membership from leaking to systems the
// group's owners never opted into.
type GroupsAPI struct {
	members groups.ResolverInterface
	tags    tags.RepositoryInterface
	clock   *clock.Clock

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func (a *GroupsAPI) RegisterEndpoints(router chi.Router) {
	router.Get("/api/v1/group/{dom}/{id}/members", a.handleMembers)
}

func (a *GroupsAPI) handleMembers(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "dom")
	id := chi.URLParam(r, "id")
	if !validation.IsDomain(domain) || !validation.IsSlug(id) {
		writeError(w, r, httperr.New(httperr.KindNotFoundGroup, nil))
		return
	}

	ref := groups.Ref{ID: id, Domain: domain}
	systemID := relevantSystem(r)

	assignments, err := a.tags.FindAssignmentsByGroup(r.Context(), systemID, ref)
	if err != nil {
		writeError(w, r, httperr.New(httperr.KindInternal, err))
		return
	}
	if len(assignments) == 0 {
		writeError(w, r, httperr.New(httperr.KindNotFoundGroup, nil))
		return
	}

	members, err := a.members.MembersOf(r.Context(), ref, a.clock.Today())
	if err != nil {
		writeError(w, r, httperr.New(httperr.KindInternal, err))
		return
	}

	usernames := make([]string, len(members))
	for i, m := range members {
		usernames[i] = m.Username
	}
	sort.Strings(usernames)

	writeJSON(w, usernames)
}

func NewGroupsAPI(members groups.ResolverInterface, tagsRepo tags.RepositoryInterface, clk *clock.Clock, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *GroupsAPI {
	a := new(GroupsAPI)

	a.members = members
	a.tags = tagsRepo
	a.clock = clk
	a.logger = logger
	a.tracer = tracer
	a.monitor = monitor

	return a
}
