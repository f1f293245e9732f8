// Package migrations embeds the reviews schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
