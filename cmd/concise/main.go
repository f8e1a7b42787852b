package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/concise/internal/cli"
	"github.com/julianstephens/concise/internal/cli/goals"
	"github.com/julianstephens/concise/internal/cli/settings"
	"github.com/julianstephens/concise/internal/cli/system"
	"github.com/julianstephens/concise/internal/constants"
	apperrors "github.com/julianstephens/concise/internal/errors"
	"github.com/julianstephens/concise/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"${config_path}"`
	Debug   bool   `help:"Mirror debug logs to stderr."`

	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Daily    system.DailyCmd    `cmd:"" help:"Record today's goal check."`
	Goal     goals.GoalCmd      `cmd:"" help:"Manage goals."`
	History  goals.HistoryCmd   `cmd:"" help:"Show recent daily achievements."`
	Settings settings.ConfigCmd `cmd:"" name:"config" help:"Show or change the config file."`
	Init     system.InitCmd     `cmd:"" help:"Create the config file and database schema."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Keyring  system.KeyringCmd  `cmd:"" help:"Manage the connection URL stored in the OS keyring."`
	Backup   system.BackupCmd   `cmd:"" help:"Manage sqlite database backups."`
	Debug    system.DebugCmd    `cmd:"" help:"Debug commands for troubleshooting."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Personal goal tracker with a daily check"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, Dir: filepath.Dir(CLI.Config)}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}

	appCtx := cli.NewContext(CLI.Config)
	defer appCtx.Close()

	logger.Debug("Running command", "command", ctx.Command(), "config", CLI.Config)
	if err := ctx.Run(appCtx); err != nil {
		appCtx.Close()
		apperrors.Fatal(err)
	}
}
