// Package migrations embeds the service's SQL schema migrations so the
// binaries can apply them without a migrations directory on disk.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
