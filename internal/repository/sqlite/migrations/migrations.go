// Package migrations holds the embedded SQLite schema and the runner that applies it.
package migrations

import "embed"

// FS contains the ordered *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
