// Package migrations holds the schema files applied by concise init.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// ForDriver returns the migration files for a database driver name.
func ForDriver(driver string) (fs.FS, error) {
	switch driver {
	case "postgres", "sqlite":
		return fs.Sub(FS, driver)
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
}
