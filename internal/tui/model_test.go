package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/concise/internal/config"
	"github.com/julianstephens/concise/internal/constants"
	apperrors "github.com/julianstephens/concise/internal/errors"
	"github.com/julianstephens/concise/internal/models"
	"github.com/julianstephens/concise/internal/tui/components/goals"
	"github.com/julianstephens/concise/internal/tui/components/settings"
)

type fakeConnector struct {
	applied []config.Config
	state   constants.ConnState
	err     error
}

func (f *fakeConnector) ApplyConfig(_ context.Context, cfg config.Config) (bool, error) {
	f.applied = append(f.applied, cfg)
	if f.err != nil {
		f.state = constants.Disconnected
		return true, f.err
	}
	f.state = constants.Connected
	return true, nil
}

func (f *fakeConnector) State() constants.ConnState {
	return f.state
}

type fakeStore struct {
	goals   []models.Goal
	enabled []int64
	deleted []int64
	err     error
}

func (f *fakeStore) ListGoals(context.Context) ([]models.Goal, error) {
	return f.goals, f.err
}

func (f *fakeStore) AddGoal(_ context.Context, name string) (models.Goal, error) {
	if f.err != nil {
		return models.Goal{}, f.err
	}
	g := models.Goal{ID: int64(len(f.goals) + 1), Name: name}
	f.goals = append(f.goals, g)
	return g, nil
}

func (f *fakeStore) RenameGoal(context.Context, int64, string) error {
	return f.err
}

func (f *fakeStore) DeleteGoal(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) SetEnabledGoals(_ context.Context, ids []int64) error {
	if f.err != nil {
		return f.err
	}
	f.enabled = ids
	return nil
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func newTestModel(t *testing.T) (Model, *fakeConnector, *fakeStore) {
	t.Helper()
	conn := &fakeConnector{}
	store := &fakeStore{goals: []models.Goal{
		{ID: 1, Name: "Read", IsEnabled: true},
		{ID: 2, Name: "Run"},
	}}
	cfg := config.Default()
	cfg.Database.URL = "sqlite:///tmp/concise.db"
	m := NewModel(Options{
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Config:     cfg,
		DB:         conn,
		Goals:      store,
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, conn, store
}

// connect runs Init and the goal load it triggers
func connect(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.Init()()
	m, cmd := update(t, m, msg)
	if cmd == nil {
		t.Fatal("expected goal load after connecting")
	}
	m, _ = update(t, m, cmd())
	return m
}

func TestInitConnectsAndLoadsGoals(t *testing.T) {
	m, conn, _ := newTestModel(t)
	m = connect(t, m)

	if len(conn.applied) != 1 {
		t.Fatalf("ApplyConfig called %d times, want 1", len(conn.applied))
	}
	if m.conn != constants.Connected {
		t.Errorf("conn = %v, want Connected", m.conn)
	}
	if m.goalsModel.Len() != 2 {
		t.Errorf("goals = %d, want 2", m.goalsModel.Len())
	}
	if !strings.Contains(m.View(), "Read") {
		t.Error("view should list goals")
	}
}

func TestConnectionFailureShowsStatus(t *testing.T) {
	m, conn, _ := newTestModel(t)
	conn.err = apperrors.Wrap(apperrors.ErrConnection, errors.New("refused"))

	m, cmd := update(t, m, m.Init()())
	if cmd != nil {
		t.Error("no goal load expected after a failed connection")
	}
	if !m.statusIsErr || !strings.Contains(m.status, "refused") {
		t.Errorf("status = %q (err=%v)", m.status, m.statusIsErr)
	}
	if !strings.Contains(m.View(), "refused") {
		t.Error("view should show the connection error")
	}
}

func TestConfigErrorShownOnStart(t *testing.T) {
	m := NewModel(Options{ConfigErr: apperrors.Wrap(apperrors.ErrConfigRead, errors.New("bad toml"))})
	if m.Init() != nil {
		t.Error("Init without a connector should do nothing")
	}
	if !strings.Contains(m.View(), "bad toml") {
		t.Error("view should show the config error")
	}
}

func TestTabSwitching(t *testing.T) {
	m, _, _ := newTestModel(t)
	if m.State() != constants.StateGoals {
		t.Fatalf("initial state = %v", m.State())
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.State() != constants.StateSettings {
		t.Fatalf("state after tab = %v", m.State())
	}
	if !strings.Contains(m.View(), "Timestamp delta") {
		t.Error("settings tab should show the delta")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.State() != constants.StateGoals {
		t.Errorf("state after shift+tab = %v", m.State())
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, cmd := update(t, m, keyPress("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestSaveEnabledGoals(t *testing.T) {
	m, _, store := newTestModel(t)
	m = connect(t, m)

	// cursor starts on "Read"; uncheck it and check "Run"
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.goalsModel.Dirty() {
		t.Fatal("toggles should mark the list dirty")
	}

	m, cmd := update(t, m, keyPress("s"))
	save, ok := cmd().(goals.SaveEnabledMsg)
	if !ok {
		t.Fatal("expected SaveEnabledMsg")
	}
	if len(save.IDs) != 1 || save.IDs[0] != 2 {
		t.Fatalf("ids = %v, want [2]", save.IDs)
	}

	m, cmd = update(t, m, save)
	m, cmd = update(t, m, cmd())
	if len(store.enabled) != 1 || store.enabled[0] != 2 {
		t.Errorf("store enabled = %v", store.enabled)
	}
	if m.notice == "" {
		t.Error("expected a notice after saving")
	}
	if _, ok := cmd().(GoalsChangedMsg); !ok {
		t.Error("a successful save should emit GoalsChangedMsg")
	}
}

func TestGoalErrorsShownInline(t *testing.T) {
	m, _, store := newTestModel(t)
	m = connect(t, m)
	store.err = apperrors.ErrDuplicateName

	m, cmd := update(t, m, goals.SaveEnabledMsg{IDs: []int64{1}})
	m, cmd = update(t, m, cmd())
	if cmd != nil {
		t.Error("failed operation should not reload")
	}
	if !strings.Contains(m.View(), apperrors.ErrDuplicateName.Error()) {
		t.Error("view should show the goal error")
	}
	if m.statusIsErr {
		t.Error("goal errors belong inline, not in the status line")
	}
}

func TestNoSelection(t *testing.T) {
	m := NewModel(Options{Goals: &fakeStore{}})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})

	for _, k := range []string{"e", "d"} {
		next, cmd := update(t, m, keyPress(k))
		msg := cmd()
		if _, ok := msg.(goals.NoSelectionMsg); !ok {
			t.Fatalf("%s: got %T, want NoSelectionMsg", k, msg)
		}
		next, _ = update(t, next, msg)
		if next.State() != constants.StateGoals {
			t.Errorf("%s: state = %v", k, next.State())
		}
		if !strings.Contains(next.View(), noSelectionText) {
			t.Errorf("%s: view should say %q", k, noSelectionText)
		}
	}
}

func TestDeleteConfirmation(t *testing.T) {
	m, _, store := newTestModel(t)
	m = connect(t, m)

	m, cmd := update(t, m, keyPress("d"))
	m, _ = update(t, m, cmd())
	if m.State() != constants.StateConfirmDelete {
		t.Fatalf("state = %v, want confirm delete", m.State())
	}
	if !strings.Contains(m.View(), "Read") {
		t.Error("confirmation should name the goal")
	}

	m, cmd = update(t, m, keyPress("n"))
	if cmd != nil || len(store.deleted) != 0 {
		t.Fatal("declining should not delete")
	}
	if m.State() != constants.StateGoals {
		t.Fatalf("state after n = %v", m.State())
	}

	m, cmd = update(t, m, keyPress("d"))
	m, _ = update(t, m, cmd())
	m, cmd = update(t, m, keyPress("y"))
	if m.State() != constants.StateGoals {
		t.Errorf("state after y = %v", m.State())
	}
	update(t, m, cmd())
	if len(store.deleted) != 1 || store.deleted[0] != 1 {
		t.Errorf("deleted = %v, want [1]", store.deleted)
	}
}

func TestAddGoalFormEscape(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(t, m, goals.AddGoalMsg{})
	if m.State() != constants.StateAddGoal {
		t.Fatalf("state = %v, want add goal", m.State())
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.State() != constants.StateGoals {
		t.Errorf("state after esc = %v", m.State())
	}
}

func TestRenameGoalFormPrefilled(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(t, m, goals.RenameGoalMsg{Goal: models.Goal{ID: 2, Name: "Run"}})
	if m.State() != constants.StateRenameGoal {
		t.Fatalf("state = %v", m.State())
	}
	if m.goalForm.Name != "Run" || m.editingGoal.ID != 2 {
		t.Errorf("form = %+v, editing = %+v", m.goalForm, m.editingGoal)
	}
}

func TestEditSettingsEscapeResetsForm(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, cmd := update(t, m, keyPress("e"))
	m, _ = update(t, m, cmd())
	if m.State() != constants.StateEditSettings {
		t.Fatalf("state = %v, want edit settings", m.State())
	}

	m.settingsForm.URL = "postgres://changed/db"
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.State() != constants.StateSettings {
		t.Errorf("state after esc = %v", m.State())
	}
	if m.settingsForm.URL != m.Config().Database.URL {
		t.Errorf("form url = %q, want reset to %q", m.settingsForm.URL, m.Config().Database.URL)
	}
}

func TestConfigChangedReappliesConfig(t *testing.T) {
	m, conn, _ := newTestModel(t)
	m = connect(t, m)

	cfg := m.Config()
	cfg.Timestamp.Delta = config.Delta{Hours: config.IntPtr(-3)}
	m, cmd := update(t, m, ConfigChangedMsg{Config: cfg})
	if m.Config().Timestamp.Delta.Duration() != cfg.Timestamp.Delta.Duration() {
		t.Error("model should hold the new config")
	}
	msg := cmd()
	if _, ok := msg.(connectionMsg); !ok {
		t.Fatalf("got %T, want connectionMsg", msg)
	}
	if len(conn.applied) != 2 {
		t.Fatalf("ApplyConfig calls = %d, want 2", len(conn.applied))
	}
	if conn.applied[1].Timestamp.Delta.Duration() != cfg.Timestamp.Delta.Duration() {
		t.Error("the full new config should reach the connector")
	}
}

func TestSaveConfigCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.Default()
	cfg.Database.URL = "postgres://user@localhost/concise"

	msg := saveConfigCmd(path, cfg)()
	changed, ok := msg.(ConfigChangedMsg)
	if !ok {
		t.Fatalf("got %T, want ConfigChangedMsg", msg)
	}
	if changed.Config.Database.URL != cfg.Database.URL {
		t.Errorf("url = %q", changed.Config.Database.URL)
	}
	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Database.URL != cfg.Database.URL {
		t.Errorf("saved url = %q", loaded.Database.URL)
	}

	msg = saveConfigCmd(filepath.Join(t.TempDir(), "missing", "config.toml"), cfg)()
	failed, ok := msg.(configSaveFailedMsg)
	if !ok {
		t.Fatalf("got %T, want configSaveFailedMsg", msg)
	}
	if !errors.Is(failed.err, apperrors.ErrConfigWrite) {
		t.Errorf("err = %v, want ErrConfigWrite", failed.err)
	}
}

func TestConfigSaveFailureShowsStatus(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(t, m, settings.EditSettingsMsg{})
	m.settingsForm.URL = "postgres://changed/db"
	m.state = constants.StateSettings

	m, _ = update(t, m, configSaveFailedMsg{err: apperrors.Wrap(apperrors.ErrConfigWrite, errors.New("disk full"))})
	if !m.statusIsErr || !strings.Contains(m.status, "disk full") {
		t.Errorf("status = %q", m.status)
	}
	if m.settingsForm.URL != m.Config().Database.URL {
		t.Error("form should reset to the stored config")
	}
}

func TestSettingsFormModelApply(t *testing.T) {
	base := config.Default()
	fm := NewSettingsFormModel(base)
	if fm.Days != "-5" || fm.Hours != "0" || fm.Minutes != "0" {
		t.Fatalf("form = %+v", fm)
	}

	fm.URL = "  sqlite:///tmp/x.db "
	fm.Days = "0"
	fm.Hours = "-4"
	fm.Minutes = ""
	cfg, err := fm.Apply(base)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.Database.URL != "sqlite:///tmp/x.db" {
		t.Errorf("url = %q", cfg.Database.URL)
	}
	days, hours, minutes := cfg.Timestamp.Delta.Parts()
	if days != 0 || hours != -4 || minutes != 0 {
		t.Errorf("delta = %d/%d/%d", days, hours, minutes)
	}

	fm.Hours = "four"
	if _, err := fm.Apply(base); err == nil {
		t.Error("expected error for non-integer hours")
	}
	if validateInt("1.5") == nil {
		t.Error("validateInt should reject decimals")
	}
	if validateInt("-12") != nil {
		t.Error("validateInt should accept negatives")
	}
}
