// Package migrations embeds the PostgreSQL schema migrations applied by
// cmd/migrate and the integration tests.
package migrations

import "embed"

// FS holds the golang-migrate up and down files.
//
//go:embed *.sql
var FS embed.FS
