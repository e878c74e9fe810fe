// Package migrations holds the goose SQL migrations for the Postgres trip
// store. The server applies them at startup; integration tests apply them
// through testutil.NewMigrator.
package migrations

import "embed"

// FS contains every *.sql file in this directory.
//
//go:embed *.sql
var FS embed.FS
