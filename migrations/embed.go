// Package migrations embeds the SQL schema migrations applied by the server,
// registryctl and integration tests.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
