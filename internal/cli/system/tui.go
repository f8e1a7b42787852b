package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/concise/internal/cli"
	"github.com/julianstephens/concise/internal/config"
	"github.com/julianstephens/concise/internal/logger"
	"github.com/julianstephens/concise/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	var cfgErr error
	if err := ctx.LoadConfig(); err != nil {
		logger.Warn("Starting with default config", "path", ctx.ConfigPath, "error", err)
		ctx.Config = config.Default()
		cfgErr = err
	}

	m := tui.NewModel(tui.Options{
		ConfigPath: ctx.ConfigPath,
		Config:     ctx.Config,
		ConfigErr:  cfgErr,
		DB:         ctx.DB,
		Goals:      ctx.Goals,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
