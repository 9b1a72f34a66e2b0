// Package migrations compiles the schema SQL into the havend binary, so
// a deployment never needs the migration files on disk.
package migrations

import (
	"embed"

	"github.com/havenhome/haven-core/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

// The database package owns the migration runner; it picks the files up
// from these package-level hooks at startup.
func init() {
	database.MigrationsFS = files
	database.MigrationsDir = "."
}
