// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tokens

import "time"

// Token is the APIToken entity. SecretHashHex is never exposed
// outside the repository layer; callers authenticate by presenting the
// raw secret, which is hashed and looked up, never compared in the clear.
type Token struct {
	ID            string
	SecretHashHex string
	SystemID      string
	Description   string
	ExpiresAt     *time.Time
	LastUsedAt    *time.Time
}

// Expired reports whether the token is no longer usable at the given
// instant: it has an expiry and that expiry has passed.
func (t *Token) Expired(at time.Time) bool {
	return t.ExpiresAt != nil && !at.Before(*t.ExpiresAt)
}
