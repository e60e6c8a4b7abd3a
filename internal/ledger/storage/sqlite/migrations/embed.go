// Package migrations contains embedded SQL migrations for the SQLite registry.
package migrations

import "embed"

// FS contains embedded SQLite migrations for registry storage.
//
//go:embed *.sql
var FS embed.FS
