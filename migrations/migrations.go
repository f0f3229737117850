// Package migrations embeds the schema so the migrate binary ships without
// a migrations directory on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
