package system

import (
	"context"

	"github.com/julianstephens/concise/internal/cli"
	"github.com/julianstephens/concise/internal/daily"
)

type DailyCmd struct{}

func (c *DailyCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Connect(bg); err != nil {
		return err
	}

	r := &daily.Runner{
		Goals:    ctx.Goals,
		Prompter: daily.FormPrompter{},
		Delta:    ctx.Config.Timestamp.Delta,
		Out:      ctx.Out,
		LockDir:  ctx.ConfigDir(),
	}
	_, err := r.Run(bg)
	return err
}
