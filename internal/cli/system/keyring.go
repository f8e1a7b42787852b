package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/concise/internal/cli"
	"github.com/julianstephens/concise/internal/database"
	"github.com/julianstephens/concise/internal/keyring"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store the database connection URL in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show the stored connection URL (password masked)."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove the stored connection URL."`
	Status KeyringStatusCmd `cmd:"" help:"Check OS keyring availability." default:"1"`
}

// KeyringSetCmd stores the database connection URL in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"Database connection URL to store in the keyring."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if _, err := database.ParseURL(cmd.ConnectionString); err != nil {
		return fmt.Errorf("invalid connection string: %w", err)
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	ctx.Println("✓ Connection string stored successfully in OS keyring")
	ctx.Println("  Enable it with 'concise config set --keyring --url \"\"'")
	return nil
}

// KeyringGetCmd shows the stored connection URL
type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'concise keyring set' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}

	ctx.Println("Connection string retrieved from keyring:")
	ctx.Println(database.Redact(connStr))
	return nil
}

// KeyringDeleteCmd removes the stored connection URL
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}

	ctx.Println("✓ Connection string deleted from OS keyring")
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}

	ctx.Println("✓ OS keyring is available")
	if _, err := keyring.GetConnectionString(); err == nil {
		ctx.Println("✓ Connection string is stored in keyring")
	} else if errors.Is(err, keyring.ErrNotFound) {
		ctx.Println("ℹ No connection string stored in keyring")
	}
	return nil
}
