package vpnshop

import "embed"

// MigrationsFS holds the ledger schema migrations.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
