package settings

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/concise/internal/config"
	"github.com/julianstephens/concise/internal/constants"
	"github.com/julianstephens/concise/internal/database"
)

type EditSettingsMsg struct{}

type Model struct {
	cfg    config.Config
	path   string
	conn   constants.ConnState
	edit   key.Binding
	width  int
	height int
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(16)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			MarginBottom(1)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

func New(cfg config.Config, path string, width, height int) Model {
	return Model{
		cfg:    cfg,
		path:   path,
		width:  width,
		height: height,
		edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
	}
}

func (m *Model) SetConfig(cfg config.Config) {
	m.cfg = cfg
}

func (m *Model) SetConnState(s constants.ConnState) {
	m.conn = s
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.edit) {
		return m, func() tea.Msg { return EditSettingsMsg{} }
	}
	return m, nil
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}

func (m Model) View() string {
	url := "(not set)"
	if m.cfg.Database.URL != "" {
		url = database.Redact(m.cfg.Database.URL)
	} else if m.cfg.Database.Keyring {
		url = "(from OS keyring)"
	}
	days, hours, minutes := m.cfg.Timestamp.Delta.Parts()

	dbSection := sectionStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("Database"),
		row("URL", url),
		row("Keyring", fmt.Sprintf("%v", m.cfg.Database.Keyring)),
		row("Connection", m.conn.String()),
	))

	delta := sectionStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("Timestamp delta"),
		row("Days", fmt.Sprintf("%d", days)),
		row("Hours", fmt.Sprintf("%d", hours)),
		row("Minutes", fmt.Sprintf("%d", minutes)),
	))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		dbSection,
		delta,
		hintStyle.Render(fmt.Sprintf("Config file: %s", m.path)),
		hintStyle.Render("Press 'e' to edit."),
	)
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
