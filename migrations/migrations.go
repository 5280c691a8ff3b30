// Package migrations embeds the database schema migrations so the server
// binary can apply them without a separate migrations directory on disk.
package migrations

import "embed"

// FS holds the goose SQL migration files.
//
//go:embed *.sql
var FS embed.FS
