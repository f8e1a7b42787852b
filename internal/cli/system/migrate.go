package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/concise/internal/backup"
	"github.com/julianstephens/concise/internal/cli"
	"github.com/julianstephens/concise/internal/database"
	"github.com/julianstephens/concise/internal/migration"
	"github.com/julianstephens/concise/migrations"
)

// newRunner returns a migration runner for the live connection
func newRunner(ctx *cli.Context) (*migration.Runner, error) {
	db := ctx.DB.Current()
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	sub, err := migrations.ForDriver(string(ctx.DB.Driver()))
	if err != nil {
		return nil, err
	}
	return migration.NewRunner(db, sub), nil
}

func applyMigrations(ctx *cli.Context) error {
	runner, err := newRunner(ctx)
	if err != nil {
		return err
	}
	_, err = runner.ApplyMigrations(context.Background(), func(msg string) {
		ctx.Println(msg)
	})
	return err
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Connect(context.Background()); err != nil {
		return err
	}

	runner, err := newRunner(ctx)
	if err != nil {
		return err
	}
	if err := backupBeforeMigrate(ctx, runner); err != nil {
		return err
	}

	count, err := runner.ApplyMigrations(context.Background(), func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}

// backupBeforeMigrate snapshots a sqlite store that already has a schema and
// is about to be upgraded
func backupBeforeMigrate(ctx *cli.Context, runner *migration.Runner) error {
	if ctx.DB.Driver() != database.DriverSQLite {
		return nil
	}
	bg := context.Background()
	if err := runner.EnsureSchemaVersionTable(bg); err != nil {
		return err
	}
	current, err := runner.CurrentVersion(bg)
	if err != nil {
		return err
	}
	latest, err := runner.LatestVersion()
	if err != nil {
		return err
	}
	if current == 0 || current >= latest {
		return nil
	}

	info, _ := ctx.DB.Info()
	path, err := backup.NewManager(info.Path).Create(bg, ctx.DB.Current())
	if err != nil {
		return fmt.Errorf("failed to back up database before migrating: %w", err)
	}
	ctx.Printf("Backed up database to %s\n", path)
	return nil
}
