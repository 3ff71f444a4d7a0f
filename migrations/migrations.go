// Package migrations embeds the SQL schema so the binary and tests apply the
// same files.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
