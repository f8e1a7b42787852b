package goals

import (
	"context"

	"github.com/julianstephens/concise/internal/cli"
)

type GoalCmd struct {
	Add    GoalAddCmd    `cmd:"" help:"Add a goal (disabled until enabled)."`
	List   GoalListCmd   `cmd:"" help:"List goals." default:"1"`
	Rename GoalRenameCmd `cmd:"" help:"Rename a goal."`
	Delete GoalDeleteCmd `cmd:"" help:"Delete a goal. Its history is kept."`
	Enable GoalEnableCmd `cmd:"" help:"Replace the set of enabled goals."`
}

type GoalAddCmd struct {
	Name string `arg:"" help:"Goal name."`
}

func (c *GoalAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Connect(bg); err != nil {
		return err
	}

	goal, err := ctx.Goals.AddGoal(bg, c.Name)
	if err != nil {
		return err
	}

	ctx.Printf("Added goal %d: %s\n", goal.ID, goal.Name)
	return nil
}

type GoalListCmd struct {
	Enabled bool `help:"Only show enabled goals."`
}

func (c *GoalListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Connect(bg); err != nil {
		return err
	}

	list := ctx.Goals.ListGoals
	if c.Enabled {
		list = ctx.Goals.EnabledGoals
	}
	goals, err := list(bg)
	if err != nil {
		return err
	}

	if len(goals) == 0 {
		ctx.Println("No goals found.")
		return nil
	}

	for _, g := range goals {
		mark := "[ ]"
		if g.IsEnabled {
			mark = "[x]"
		}
		ctx.Printf("%s %4d  %s\n", mark, g.ID, g.Name)
	}
	return nil
}

type GoalRenameCmd struct {
	ID   int64  `arg:"" help:"Goal id."`
	Name string `arg:"" help:"New name."`
}

func (c *GoalRenameCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Connect(bg); err != nil {
		return err
	}

	if err := ctx.Goals.RenameGoal(bg, c.ID, c.Name); err != nil {
		return err
	}

	ctx.Printf("Renamed goal %d to %s\n", c.ID, c.Name)
	return nil
}

type GoalDeleteCmd struct {
	ID int64 `arg:"" help:"Goal id."`
}

func (c *GoalDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Connect(bg); err != nil {
		return err
	}

	if err := ctx.Goals.DeleteGoal(bg, c.ID); err != nil {
		return err
	}

	ctx.Printf("Deleted goal %d\n", c.ID)
	return nil
}

type GoalEnableCmd struct {
	IDs []int64 `arg:"" optional:"" help:"Ids of the goals to enable. Every other goal is disabled."`
}

func (c *GoalEnableCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Connect(bg); err != nil {
		return err
	}

	if err := ctx.Goals.SetEnabledGoals(bg, c.IDs); err != nil {
		return err
	}

	if len(c.IDs) == 0 {
		ctx.Println("All goals disabled.")
		return nil
	}
	ctx.Printf("Enabled %d goal(s).\n", len(c.IDs))
	return nil
}
