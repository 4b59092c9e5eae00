// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package migrations embeds the numbered goose SQL migrations implementing
// the data model, applied in order at startup before traffic is served.
package migrations

import "embed"

//go:embed *.sql
var EmbedMigrations embed.FS
