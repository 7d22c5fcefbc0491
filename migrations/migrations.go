// Package migrations embeds the goose SQL migrations for the Run Store.
package migrations

import "embed"

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
