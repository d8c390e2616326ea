// Package migrations embeds the versioned SQL schema applied by db.Migrator.
package migrations

import "embed"

// FS holds every NNN_name.sql file in this directory.
//
//go:embed *.sql
var FS embed.FS
