package goals

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/concise/internal/models"
)

type AddGoalMsg struct{}

type RenameGoalMsg struct {
	Goal models.Goal
}

type DeleteGoalMsg struct {
	Goal models.Goal
}

// SaveEnabledMsg carries the checked goal ids
type SaveEnabledMsg struct {
	IDs []int64
}

type RefreshGoalsMsg struct{}

// NoSelectionMsg is emitted when an action needs a selected goal
type NoSelectionMsg struct {
	Action string
}

type Item struct {
	Goal    models.Goal
	Checked bool
}

func (i Item) Title() string {
	if i.Checked {
		return "[x] " + i.Goal.Name
	}
	return "[ ] " + i.Goal.Name
}

func (i Item) Description() string {
	desc := fmt.Sprintf("#%d", i.Goal.ID)
	if i.Checked != i.Goal.IsEnabled {
		desc += " (unsaved)"
	}
	return desc
}

func (i Item) FilterValue() string { return i.Goal.Name }

type KeyMap struct {
	Toggle  key.Binding
	Save    key.Binding
	Add     key.Binding
	Rename  key.Binding
	Delete  key.Binding
	Refresh key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "toggle"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save enabled"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Rename: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(goals []models.Goal, width, height int) Model {
	l := list.New(items(goals), list.NewDefaultDelegate(), width, height)
	l.Title = "Goals"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Save, keys.Add, keys.Rename, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Save, keys.Add, keys.Rename, keys.Delete, keys.Refresh}
	}

	return Model{list: l, keys: keys}
}

func items(goals []models.Goal) []list.Item {
	out := make([]list.Item, len(goals))
	for i, g := range goals {
		out[i] = Item{Goal: g, Checked: g.IsEnabled}
	}
	return out
}

// SetGoals replaces the list, dropping unsaved toggles
func (m *Model) SetGoals(goals []models.Goal) {
	m.list.SetItems(items(goals))
}

// Selected returns the goal under the cursor
func (m Model) Selected() (models.Goal, bool) {
	i, ok := m.list.SelectedItem().(Item)
	if !ok {
		return models.Goal{}, false
	}
	return i.Goal, true
}

// CheckedIDs returns the ids currently checked, in id order
func (m Model) CheckedIDs() []int64 {
	ids := []int64{}
	for _, it := range m.list.Items() {
		if i, ok := it.(Item); ok && i.Checked {
			ids = append(ids, i.Goal.ID)
		}
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	return ids
}

// Dirty reports whether any checkbox differs from the stored state
func (m Model) Dirty() bool {
	for _, it := range m.list.Items() {
		if i, ok := it.(Item); ok && i.Checked != i.Goal.IsEnabled {
			return true
		}
	}
	return false
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.list.SelectedItem().(Item); ok {
				i.Checked = !i.Checked
				cmd = m.list.SetItem(m.list.Index(), i)
			}
			return m, cmd
		case key.Matches(msg, m.keys.Save):
			ids := m.CheckedIDs()
			return m, func() tea.Msg { return SaveEnabledMsg{IDs: ids} }
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddGoalMsg{} }
		case key.Matches(msg, m.keys.Rename):
			if g, ok := m.Selected(); ok {
				return m, func() tea.Msg { return RenameGoalMsg{Goal: g} }
			}
			return m, func() tea.Msg { return NoSelectionMsg{Action: "rename"} }
		case key.Matches(msg, m.keys.Delete):
			if g, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteGoalMsg{Goal: g} }
			}
			return m, func() tea.Msg { return NoSelectionMsg{Action: "delete"} }
		case key.Matches(msg, m.keys.Refresh):
			return m, func() tea.Msg { return RefreshGoalsMsg{} }
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No goals yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
