// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package httperr implements the dotted-key error kinds and the
// {"error":true,"info":{...}} envelope the v1 API returns for every non-2xx
// response.
package httperr

import (
	"encoding/json"
	"net/http"
)

// Kind is a stable dotted error key.
type Kind string

const (
	KindForbidden           Kind = "forbidden"
	KindAPIKeyUnknown       Kind = "api-key.unknown"
	KindAPIKeyExpired       Kind = "api-key.expired"
	KindValidation          Kind = "validation.invalid-slug"
	KindValidationLang      Kind = "validation.unknown-lang"
	KindNotFoundGroup       Kind = "not-found.group"
	KindNotFoundUser        Kind = "not-found.user"
	KindNotFoundTag         Kind = "not-found.tag"
	KindNotFoundPermission  Kind = "not-found.permission"
	KindNotFoundSystem      Kind = "not-found.system"
	KindConflictDuplicate   Kind = "conflict.duplicate"
	KindConflictCycle       Kind = "conflict.cycle"
	KindInternal            Kind = "internal"
)

var statusByKind = map[Kind]int{
	KindForbidden:          http.StatusForbidden,
	KindAPIKeyUnknown:      http.StatusUnauthorized,
	KindAPIKeyExpired:      http.StatusUnauthorized,
	KindValidation:         http.StatusBadRequest,
	KindValidationLang:     http.StatusBadRequest,
	KindNotFoundGroup:      http.StatusNotFound,
	KindNotFoundUser:       http.StatusNotFound,
	KindNotFoundTag:        http.StatusNotFound,
	KindNotFoundPermission: http.StatusNotFound,
	KindNotFoundSystem:     http.StatusNotFound,
	KindConflictDuplicate:  http.StatusConflict,
	KindConflictCycle:      http.StatusConflict,
	KindInternal:           http.StatusInternalServerError,
}

// Error is the concrete error type carrying a Kind plus optional
// structured details (e.g. a correlation id for internal errors).
type Error struct {
	Kind    Kind
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return string(e.Kind) + ": " + e.cause.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Status returns the HTTP status code associated with the error's kind.
func (e *Error) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

func WithDetails(kind Kind, details map[string]any) *Error {
	return &Error{Kind: kind, Details: details}
}

type envelope struct {
	Error bool      `json:"error"`
	Info  *infoBody `json:"info"`
}

type infoBody struct {
	Key     Kind           `json:"key"`
	Details map[string]any `json:"details,omitempty"`
}

// Write renders err as the standard error envelope. Any error not already an *Error is
// folded into KindInternal with the given correlationID attached so the
// client-facing message stays generic; the real cause stays on the Error
// (see Unwrap) and is not written to the response. Write does not log it.
func Write(w http.ResponseWriter, err error, correlationID string) {
	herr, ok := err.(*Error)
	if !ok {
		herr = &Error{
			Kind:    KindInternal,
			Details: map[string]any{"id": correlationID},
			cause:   err,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(herr.Status())

	_ = json.NewEncoder(w).Encode(envelope{
		Error: true,
		Info: &infoBody{
			Key:     herr.Kind,
			Details: herr.Details,
		},
	})
}
