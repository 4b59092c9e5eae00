// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorizer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// HashSecret implements this package's token lookup key: the bearer secret is
// a UUID string; its raw 16 bytes, not its textual form, are hashed, so
// the canonical and any RFC-equivalent rendering of the same UUID hash
// identically.
func HashSecret(bearer string) (string, error) {
	id, err := uuid.Parse(bearer)
	if err != nil {
		return "", fmt.Errorf("malformed bearer secret: %w", err)
	}

	raw := id[:]
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// NewSecret mints a fresh bearer secret and its lookup hash, for token
// provisioning.
func NewSecret() (raw string, hashHex string) {
	id := uuid.New()
	sum := sha256.Sum256(id[:])
	return id.String(), hex.EncodeToString(sum[:])
}
