// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorizer

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashSecret_RejectsMalformedInput(t *testing.T) {
	_, err := HashSecret("not-a-uuid")
	assert.Error(t, err)
}

func TestHashSecret_SameUUIDHashesIdenticallyRegardlessOfRendering(t *testing.T) {
	id := uuid.New()

	canonical, err := HashSecret(id.String())
	require.NoError(t, err)

	upper, err := HashSecret(strings.ToUpper(id.String()))
	require.NoError(t, err)

	assert.Equal(t, canonical, upper, "hashing is over the raw 16 bytes, not the textual rendering")
}

func TestNewSecret_HashMatchesHashSecretOfRawValue(t *testing.T) {
	raw, hash := NewSecret()

	recomputed, err := HashSecret(raw)
	require.NoError(t, err)
	assert.Equal(t, hash, recomputed)
}
