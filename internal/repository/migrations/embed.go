// Package migrations embeds the SQL migration files for both database
// dialects. File names carry the dialect before the .sql suffix, for
// example 001_init.sqlite.sql.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
