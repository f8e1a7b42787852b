package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/concise/internal/config"
	"github.com/julianstephens/concise/internal/constants"
	"github.com/julianstephens/concise/internal/models"
	"github.com/julianstephens/concise/internal/tui/components/goals"
	"github.com/julianstephens/concise/internal/tui/components/settings"
)

// Connector owns the database connection derived from the config
type Connector interface {
	ApplyConfig(ctx context.Context, cfg config.Config) (bool, error)
	State() constants.ConnState
}

// GoalStore is the goal registry as seen by the UI
type GoalStore interface {
	ListGoals(ctx context.Context) ([]models.Goal, error)
	AddGoal(ctx context.Context, name string) (models.Goal, error)
	RenameGoal(ctx context.Context, id int64, name string) error
	DeleteGoal(ctx context.Context, id int64) error
	SetEnabledGoals(ctx context.Context, ids []int64) error
}

// Options wires the model to its config file, connection and goal store
type Options struct {
	ConfigPath string
	Config     config.Config
	// ConfigErr is shown as a status when the config could not be read
	ConfigErr  error
	DB         Connector
	Goals      GoalStore
}

type Model struct {
	configPath    string
	cfg           config.Config
	db            Connector
	store         GoalStore
	state         constants.SessionState
	keys          KeyMap
	help          help.Model
	goalsModel    goals.Model
	settingsModel settings.Model
	form          *huh.Form
	goalForm      *GoalFormModel
	settingsForm  *SettingsFormModel
	editingGoal   models.Goal
	deletingGoal  models.Goal
	conn          constants.ConnState
	goalErr       string
	status        string
	statusIsErr   bool
	notice        string
	quitting      bool
	width         int
	height        int
}

func NewModel(opts Options) Model {
	m := Model{
		configPath:    opts.ConfigPath,
		cfg:           opts.Config,
		db:            opts.DB,
		store:         opts.Goals,
		state:         constants.StateGoals,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		goalsModel:    goals.New(nil, 0, 0),
		settingsModel: settings.New(opts.Config, opts.ConfigPath, 0, 0),
	}
	if opts.ConfigErr != nil {
		m.setStatus(opts.ConfigErr.Error(), true)
	}
	return m
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusIsErr = isErr
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateGoals:
		keys = append(keys, m.keys.Toggle, m.keys.Save, m.keys.Add, m.keys.Edit, m.keys.Delete)
	case constants.StateSettings:
		keys = append(keys, m.keys.Edit)
	case constants.StateConfirmDelete:
		keys = []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case constants.StateGoals:
		actions = []key.Binding{m.keys.Toggle, m.keys.Save, m.keys.Add, m.keys.Edit, m.keys.Delete, m.keys.Refresh}
	case constants.StateSettings:
		actions = []key.Binding{m.keys.Edit}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	if m.db == nil {
		return nil
	}
	return applyConfigCmd(m.db, m.cfg)
}

// Config returns the config the UI is currently showing
func (m Model) Config() config.Config {
	return m.cfg
}

// State returns the current session state
func (m Model) State() constants.SessionState {
	return m.state
}
