// Package migrations embeds the goose SQL migrations for each supported dialect.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Dir returns the embedded directory holding migrations for a goose dialect.
func Dir(dialect string) string {
	if dialect == "sqlite3" || dialect == "sqlite" {
		return "sqlite"
	}
	return "postgres"
}
