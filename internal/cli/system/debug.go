package system

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/concise/internal/cli"
	"github.com/julianstephens/concise/internal/database"
	apperrors "github.com/julianstephens/concise/internal/errors"
	"github.com/julianstephens/concise/internal/models"
	"github.com/julianstephens/concise/internal/utils"
)

type DebugCmd struct {
	DBInfo   DebugDBInfoCmd   `cmd:"" name:"db-info" help:"Show the resolved database connection."`
	DumpDay  DebugDumpDayCmd  `cmd:"" help:"Dump the daily log of a day as JSON."`
	DumpGoal DebugDumpGoalCmd `cmd:"" help:"Dump a goal as JSON."`
}

func printJSON(ctx *cli.Context, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(b))
	return nil
}

type DebugDBInfoCmd struct{}

func (cmd *DebugDBInfoCmd) Run(ctx *cli.Context) error {
	if err := ctx.LoadConfig(); err != nil {
		return err
	}
	raw, err := database.ResolveURL(ctx.Config.Database)
	if err != nil {
		return err
	}

	out := map[string]string{
		"config": ctx.ConfigPath,
		"source": "config",
	}
	if ctx.Config.Database.URL == "" && ctx.Config.Database.Keyring {
		out["source"] = "keyring"
	}
	if raw == "" {
		out["driver"] = ""
		return printJSON(ctx, out)
	}

	info, err := database.ParseURL(raw)
	if err != nil {
		return err
	}
	out["driver"] = string(info.Driver)
	out["url"] = info.Redacted()
	if info.Driver == database.DriverSQLite {
		out["path"] = info.Path
	}
	return printJSON(ctx, out)
}

type DebugDumpDayCmd struct {
	Date string `arg:"" help:"Day to dump (YYYY-MM-DD or 'today' for the logical day)." default:"today"`
}

func (cmd *DebugDumpDayCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Connect(bg); err != nil {
		return err
	}

	date := cmd.Date
	if date == "today" {
		d, err := ctx.Goals.LogicalDate(bg, time.Now(), ctx.Config.Timestamp.Delta)
		if err != nil {
			return err
		}
		date = d
	}
	if _, err := utils.ParseDate(date); err != nil {
		return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD or 'today')", date)
	}

	rows, err := ctx.Goals.Achievements(bg, date, date)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []models.DailyAchievement{}
	}
	return printJSON(ctx, struct {
		Date string                    `json:"date"`
		Rows []models.DailyAchievement `json:"rows"`
	}{date, rows})
}

type DebugDumpGoalCmd struct {
	ID int64 `arg:"" help:"ID of the goal to dump."`
}

func (cmd *DebugDumpGoalCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Connect(bg); err != nil {
		return err
	}

	goals, err := ctx.Goals.ListGoals(bg)
	if err != nil {
		return err
	}
	for _, g := range goals {
		if g.ID == cmd.ID {
			return printJSON(ctx, g)
		}
	}
	return fmt.Errorf("%w: goal %d", apperrors.ErrNotFound, cmd.ID)
}
