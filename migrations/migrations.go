// Package migrations embeds the database schemas. Postgres migrations are
// applied with goose; SQLite databases are created from a single schema file.
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS

//go:embed sqlite/schema.sql
var SQLiteSchema string
