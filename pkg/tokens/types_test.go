// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToken_Expired_NoExpiryNeverExpires(t *testing.T) {
	tok := &Token{}
	assert.False(t, tok.Expired(time.Now().Add(100*365*24*time.Hour)))
}

func TestToken_Expired_PastExpiryIsExpired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	tok := &Token{ExpiresAt: &past}
	assert.True(t, tok.Expired(time.Now()))
}

func TestToken_Expired_ExactExpiryInstantIsExpired(t *testing.T) {
	at := time.Now()
	tok := &Token{ExpiresAt: &at}
	assert.True(t, tok.Expired(at), "expiry is inclusive: the instant it expires, it's expired")
}

func TestToken_Expired_FutureExpiryIsNotExpired(t *testing.T) {
	future := time.Now().Add(time.Hour)
	tok := &Token{ExpiresAt: &future}
	assert.False(t, tok.Expired(time.Now()))
}
