// Package migrations embeds the goose migration scripts for the client-local
// session database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
