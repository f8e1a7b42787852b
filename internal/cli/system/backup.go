package system

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/concise/internal/backup"
	"github.com/julianstephens/concise/internal/cli"
	"github.com/julianstephens/concise/internal/database"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Snapshot the sqlite database." default:"1"`
	List    BackupListCmd    `cmd:"" help:"List available backups."`
	Restore BackupRestoreCmd `cmd:"" help:"Replace the database with a backup."`
}

// sqliteBackups returns a backup manager for the configured sqlite store
func sqliteBackups(ctx *cli.Context) (*backup.Manager, error) {
	if err := ctx.LoadConfig(); err != nil {
		return nil, err
	}
	raw, err := database.ResolveURL(ctx.Config.Database)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, fmt.Errorf("no database configured")
	}
	info, err := database.ParseURL(raw)
	if err != nil {
		return nil, err
	}
	if info.Driver != database.DriverSQLite {
		return nil, fmt.Errorf("backups are only supported for sqlite databases (use pg_dump for postgres)")
	}
	return backup.NewManager(info.Path), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := sqliteBackups(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Connect(context.Background()); err != nil {
		return err
	}

	path, err := mgr.Create(context.Background(), ctx.DB.Current())
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.Printf("✓ Backup created: %s\n", filepath.Base(path))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := sqliteBackups(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), backup.MaxBackups)
	for _, b := range backups {
		ctx.Printf("  %s  %s  (%.1f KB)\n",
			b.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(b.Path), float64(b.Size)/1024.0)
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	File string `arg:"" help:"Path or filename of the backup to restore."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := sqliteBackups(ctx)
	if err != nil {
		return err
	}

	path := c.File
	if !filepath.IsAbs(path) {
		if candidate := filepath.Join(mgr.Dir(), path); fileExists(candidate) {
			path = candidate
		}
	}
	if !fileExists(path) {
		return fmt.Errorf("backup file not found: %s", path)
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Replace the database with %s?", filepath.Base(path))).
			Description("The current database is backed up first.").
			Value(&confirmed).
			WithTheme(huh.ThemeDracula()).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	if err := ctx.Close(); err != nil {
		return err
	}

	previous, err := mgr.Restore(context.Background(), path)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	if previous != "" {
		ctx.Printf("Saved current database as: %s\n", filepath.Base(previous))
	}
	ctx.Println("✓ Database restored.")
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
