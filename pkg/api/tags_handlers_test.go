// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/datasektionen/hive/internal/httperr"
	"github.com/datasektionen/hive/pkg/storage"
)

func TestTagLookupError_UnknownTagIsNotFound(t *testing.T) {
	err := tagLookupError(storage.ErrNotFound)

	var herr *httperr.Error
	requireHTTPErr(t, err, &herr)
	assert.Equal(t, httperr.KindNotFoundTag, herr.Kind)
}

func TestTagLookupError_TransientFailureIsInternal(t *testing.T) {
	err := tagLookupError(errors.New("connection reset by peer"))

	var herr *httperr.Error
	requireHTTPErr(t, err, &herr)
	assert.Equal(t, httperr.KindInternal, herr.Kind)
}

func requireHTTPErr(t *testing.T, err error, target **httperr.Error) {
	t.Helper()
	if !errors.As(err, target) {
		t.Fatalf("expected *httperr.Error, got %T", err)
	}
}
