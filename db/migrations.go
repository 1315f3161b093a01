// Package db ships the SQL migrations inside the binary so the migration
// command does not depend on the working directory.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsRoot = "migrations"
