package system

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/concise/internal/cli"
	"github.com/julianstephens/concise/internal/config"
)

type InitCmd struct {
	URL string `name:"url" help:"Database URL to store when creating a new config file."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if _, err := os.Stat(ctx.ConfigPath); errors.Is(err, os.ErrNotExist) {
		cfg := config.Default()
		cfg.Database.URL = c.URL
		if err := config.Save(cfg, ctx.ConfigPath); err != nil {
			return err
		}
		ctx.Printf("Created config at: %s\n", ctx.ConfigPath)
	} else if err != nil {
		return fmt.Errorf("failed to access config: %w", err)
	} else if c.URL != "" {
		ctx.Println("Config already exists; ignoring --url. Use 'concise config set --url' to change it.")
	}

	if err := ctx.LoadConfig(); err != nil {
		return err
	}
	if _, err := ctx.DB.ApplyConfig(context.Background(), ctx.Config); err != nil {
		return err
	}
	if ctx.DB.Current() == nil {
		ctx.Println("No database configured yet. Set one with 'concise config set --url <url>' and run init again.")
		return nil
	}

	if err := applyMigrations(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	info, _ := ctx.DB.Info()
	ctx.Printf("Initialized concise storage at: %s\n", info.Redacted())
	return nil
}
