// Package migrations embeds the Postgres schema migrations so the binaries
// carry their own schema.
package migrations

import "embed"

// FS holds the numbered up/down SQL files.
//
//go:embed *.sql
var FS embed.FS
