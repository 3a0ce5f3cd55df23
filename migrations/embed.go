// Package migrations embeds the bootstrap DDL applied at startup and by
// integration tests.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
