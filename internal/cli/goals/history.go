package goals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/concise/internal/cli"
	"github.com/julianstephens/concise/internal/constants"
	"github.com/julianstephens/concise/internal/models"
)

type HistoryCmd struct {
	Days int    `help:"Number of logical days to show." default:"14"`
	Goal string `help:"Show history for one goal only."`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Connect(bg); err != nil {
		return err
	}
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	goals, err := ctx.Goals.ListGoals(bg)
	if err != nil {
		return err
	}

	if c.Goal != "" {
		var selected []models.Goal
		for _, g := range goals {
			if g.Name == c.Goal {
				selected = append(selected, g)
			}
		}
		if len(selected) == 0 {
			return fmt.Errorf("goal %q not found", c.Goal)
		}
		goals = selected
	}

	if len(goals) == 0 {
		ctx.Println("No goals found.")
		return nil
	}

	endStr, err := ctx.Goals.LogicalDate(bg, time.Now(), ctx.Config.Timestamp.Delta)
	if err != nil {
		return err
	}
	endDay, err := time.Parse(constants.DateFormat, endStr)
	if err != nil {
		return err
	}
	startDay := endDay.AddDate(0, 0, -(c.Days - 1))

	rows, err := ctx.Goals.Achievements(bg, startDay.Format(constants.DateFormat), endStr)
	if err != nil {
		return err
	}

	ctx.Printf("Goal history (last %d days, x achieved, . missed):\n\n", c.Days)
	ctx.Println(RenderHistory(goals, rows, startDay, c.Days))
	return nil
}

const nameWidth = 20

// RenderHistory draws one line per goal with a cell per day
func RenderHistory(goals []models.Goal, rows []models.DailyAchievement, start time.Time, days int) string {
	type key struct {
		id  int64
		day string
	}
	cells := make(map[key]bool, len(rows))
	for _, r := range rows {
		cells[key{r.GoalID, r.Date}] = r.Achieved
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-*s", nameWidth, "Goal"))
	for i := 0; i < days; i++ {
		b.WriteString(fmt.Sprintf(" %5s", start.AddDate(0, 0, i).Format("01/02")))
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", nameWidth+6*days))

	for _, g := range goals {
		b.WriteString("\n")
		name := g.Name
		if len(name) > nameWidth {
			name = name[:nameWidth-3] + "..."
		}
		b.WriteString(fmt.Sprintf("%-*s", nameWidth, name))

		for i := 0; i < days; i++ {
			day := start.AddDate(0, 0, i).Format(constants.DateFormat)
			achieved, ok := cells[key{g.ID, day}]
			switch {
			case !ok:
				b.WriteString("      ")
			case achieved:
				b.WriteString("   x  ")
			default:
				b.WriteString("   .  ")
			}
		}
	}
	return b.String()
}
