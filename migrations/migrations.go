// Package migrations embeds the schema files applied by
// internal/platform/postgres.Migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
