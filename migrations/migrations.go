// Package migrations embeds the goose migration files so the binary can run
// them at startup without shipping loose SQL alongside it.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
