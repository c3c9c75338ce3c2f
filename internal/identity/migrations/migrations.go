// Package migrations embeds the identity database schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
