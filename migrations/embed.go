// Package migrations embeds the SQL schema of each service, one directory per service.
package migrations

import "embed"

//go:embed identity/*.sql catalog/*.sql media/*.sql
var FS embed.FS
