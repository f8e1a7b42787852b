package settings

import (
	"context"

	"github.com/julianstephens/concise/internal/cli"
	"github.com/julianstephens/concise/internal/config"
	"github.com/julianstephens/concise/internal/database"
)

type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" help:"Show the current configuration." default:"1"`
	Set  ConfigSetCmd  `cmd:"" help:"Update configuration values."`
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.LoadConfig(); err != nil {
		return err
	}

	cfg := ctx.Config
	url := "(not set)"
	if cfg.Database.URL != "" {
		url = database.Redact(cfg.Database.URL)
	}
	days, hours, minutes := cfg.Timestamp.Delta.Parts()

	ctx.Printf("Config file: %s\n\n", ctx.ConfigPath)
	ctx.Println("Database:")
	ctx.Printf("  URL:      %s\n", url)
	ctx.Printf("  Keyring:  %v\n", cfg.Database.Keyring)
	ctx.Println("\nTimestamp delta:")
	ctx.Printf("  Days:     %d\n", days)
	ctx.Printf("  Hours:    %d\n", hours)
	ctx.Printf("  Minutes:  %d\n", minutes)
	return nil
}

type ConfigSetCmd struct {
	URL     *string `name:"url" help:"Database connection URL. An empty value disconnects."`
	Keyring *bool   `help:"Read the connection URL from the OS keyring when the URL is empty."`
	Days    *int    `help:"Timestamp delta days."`
	Hours   *int    `help:"Timestamp delta hours."`
	Minutes *int    `help:"Timestamp delta minutes."`
	Check   bool    `help:"Try connecting with the new configuration before reporting success."`
}

func (c *ConfigSetCmd) Run(ctx *cli.Context) error {
	if err := ctx.LoadConfig(); err != nil {
		if !cli.IsConfigMissing(err) {
			return err
		}
		ctx.Config = config.Default()
	}

	updated := false
	if c.URL != nil {
		ctx.Config.Database.URL = *c.URL
		updated = true
	}
	if c.Keyring != nil {
		ctx.Config.Database.Keyring = *c.Keyring
		updated = true
	}
	delta := &ctx.Config.Timestamp.Delta
	if c.Days != nil {
		delta.Days = config.IntPtr(*c.Days)
		updated = true
	}
	if c.Hours != nil {
		delta.Hours = config.IntPtr(*c.Hours)
		updated = true
	}
	if c.Minutes != nil {
		delta.Minutes = config.IntPtr(*c.Minutes)
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use 'concise config show' to view the configuration or flags to update it.")
		return nil
	}

	if err := ctx.SaveConfig(); err != nil {
		return err
	}
	ctx.Println("Configuration saved.")

	if c.Check {
		if _, err := ctx.DB.ApplyConfig(context.Background(), ctx.Config); err != nil {
			return err
		}
		ctx.Printf("Connection: %s\n", ctx.DB.State())
	}
	return nil
}
