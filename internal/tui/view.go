package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/concise/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case constants.StateGoals:
		content = m.viewGoals()
	case constants.StateSettings:
		content = docStyle.Render(m.settingsModel.View())
	case constants.StateAddGoal, constants.StateRenameGoal, constants.StateEditSettings:
		content = docStyle.Render(m.form.View())
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) activeTab() constants.SessionState {
	switch m.state {
	case constants.StateSettings, constants.StateEditSettings:
		return constants.StateSettings
	default:
		return constants.StateGoals
	}
}

func (m Model) viewTabs() string {
	var tabs []string
	active := m.activeTab()
	for _, tab := range []struct {
		title string
		state constants.SessionState
	}{
		{"Goals", constants.StateGoals},
		{"Settings", constants.StateSettings},
	} {
		if tab.state == active {
			tabs = append(tabs, activeTabStyle.Render(tab.title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(tab.title))
		}
	}
	tabs = append(tabs, connStyle.Render("db: "+m.conn.String()))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewGoals() string {
	view := m.goalsModel.View()
	switch {
	case m.goalErr != "":
		view = lipgloss.JoinVertical(lipgloss.Left, view, dangerStyle.Render(m.goalErr))
	case m.notice != "":
		view = lipgloss.JoinVertical(lipgloss.Left, view, noticeStyle.Render(m.notice))
	case m.goalsModel.Dirty():
		view = lipgloss.JoinVertical(lipgloss.Left, view, warningStyle.Render("unsaved changes, press s to save"))
	}
	return docStyle.Render(view)
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete goal %q?", m.deletingGoal.Name)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusIsErr {
		return connStyle.Render(dangerStyle.Render(m.status))
	}
	return connStyle.Render(m.status)
}
