package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/concise/internal/config"
	"github.com/julianstephens/concise/internal/constants"
	"github.com/julianstephens/concise/internal/logger"
	"github.com/julianstephens/concise/internal/models"
)

// ConfigChangedMsg carries the full config after a successful save
type ConfigChangedMsg struct {
	Config config.Config
}

// GoalsChangedMsg asks for the goal list to be reloaded
type GoalsChangedMsg struct{}

type goalsLoadedMsg struct {
	goals []models.Goal
	err   error
}

type connectionMsg struct {
	state     constants.ConnState
	attempted bool
	err       error
}

// goalOpMsg reports a finished goal mutation
type goalOpMsg struct {
	notice string
	err    error
}

type configSaveFailedMsg struct {
	err error
}

func applyConfigCmd(db Connector, cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		attempted, err := db.ApplyConfig(context.Background(), cfg)
		return connectionMsg{state: db.State(), attempted: attempted, err: err}
	}
}

func loadGoalsCmd(store GoalStore) tea.Cmd {
	return func() tea.Msg {
		goals, err := store.ListGoals(context.Background())
		return goalsLoadedMsg{goals: goals, err: err}
	}
}

func saveConfigCmd(path string, cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		if err := config.Save(cfg, path); err != nil {
			logger.Error("Failed to save config", "path", path, "error", err)
			return configSaveFailedMsg{err: err}
		}
		return ConfigChangedMsg{Config: cfg}
	}
}

func goalOp(notice string, op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := op(context.Background()); err != nil {
			return goalOpMsg{err: err}
		}
		return goalOpMsg{notice: notice}
	}
}

func addGoalCmd(store GoalStore, name string) tea.Cmd {
	return func() tea.Msg {
		g, err := store.AddGoal(context.Background(), name)
		if err != nil {
			return goalOpMsg{err: err}
		}
		return goalOpMsg{notice: fmt.Sprintf("Added %q", g.Name)}
	}
}

func renameGoalCmd(store GoalStore, id int64, name string) tea.Cmd {
	return goalOp(fmt.Sprintf("Renamed goal #%d", id), func(ctx context.Context) error {
		return store.RenameGoal(ctx, id, name)
	})
}

func deleteGoalCmd(store GoalStore, g models.Goal) tea.Cmd {
	return goalOp(fmt.Sprintf("Deleted %q", g.Name), func(ctx context.Context) error {
		return store.DeleteGoal(ctx, g.ID)
	})
}

func saveEnabledCmd(store GoalStore, ids []int64) tea.Cmd {
	return goalOp(fmt.Sprintf("Saved %d enabled goal(s)", len(ids)), func(ctx context.Context) error {
		return store.SetEnabledGoals(ctx, ids)
	})
}
