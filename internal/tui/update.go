package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/concise/internal/constants"
	"github.com/julianstephens/concise/internal/logger"
	"github.com/julianstephens/concise/internal/tui/components/goals"
	"github.com/julianstephens/concise/internal/tui/components/settings"
)

const noSelectionText = "select a goal first"

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.goalsModel.SetSize(msg.Width-4, msg.Height-8)
		m.settingsModel.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case connectionMsg:
		m.conn = msg.state
		m.settingsModel.SetConnState(msg.state)
		if msg.err != nil {
			logger.Warn("Connection failed", "error", msg.err)
			m.setStatus(msg.err.Error(), true)
			m.goalsModel.SetGoals(nil)
			return m, nil
		}
		if msg.state != constants.Connected {
			m.setStatus("No database configured", false)
			m.goalsModel.SetGoals(nil)
			return m, nil
		}
		if msg.attempted {
			m.setStatus("Connected", false)
		}
		return m, loadGoalsCmd(m.store)

	case goalsLoadedMsg:
		if msg.err != nil {
			m.goalErr = msg.err.Error()
			return m, nil
		}
		m.goalErr = ""
		m.goalsModel.SetGoals(msg.goals)
		return m, nil

	case goalOpMsg:
		if msg.err != nil {
			m.goalErr = msg.err.Error()
			m.notice = ""
			return m, nil
		}
		m.goalErr = ""
		m.notice = msg.notice
		return m, func() tea.Msg { return GoalsChangedMsg{} }

	case GoalsChangedMsg, goals.RefreshGoalsMsg:
		if m.conn != constants.Connected {
			return m, nil
		}
		return m, loadGoalsCmd(m.store)

	case ConfigChangedMsg:
		m.cfg = msg.Config
		m.settingsModel.SetConfig(msg.Config)
		m.setStatus("Settings saved", false)
		if m.db == nil {
			return m, nil
		}
		return m, applyConfigCmd(m.db, msg.Config)

	case configSaveFailedMsg:
		m.setStatus(msg.err.Error(), true)
		m.settingsForm = NewSettingsFormModel(m.cfg)
		return m, nil
	}

	switch m.state {
	case constants.StateAddGoal, constants.StateRenameGoal:
		return m.updateGoalForm(msg)
	case constants.StateEditSettings:
		return m.updateSettingsForm(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case goals.AddGoalMsg:
		m.goalForm = &GoalFormModel{}
		m.form = NewGoalForm("New goal", m.goalForm)
		m.state = constants.StateAddGoal
		return m, m.form.Init()

	case goals.RenameGoalMsg:
		m.editingGoal = msg.Goal
		m.goalForm = &GoalFormModel{Name: msg.Goal.Name}
		m.form = NewGoalForm("Rename goal", m.goalForm)
		m.state = constants.StateRenameGoal
		return m, m.form.Init()

	case goals.DeleteGoalMsg:
		m.deletingGoal = msg.Goal
		m.state = constants.StateConfirmDelete
		return m, nil

	case goals.SaveEnabledMsg:
		return m, saveEnabledCmd(m.store, msg.IDs)

	case goals.NoSelectionMsg:
		m.goalErr = noSelectionText
		m.notice = ""
		return m, nil

	case settings.EditSettingsMsg:
		m.settingsForm = NewSettingsFormModel(m.cfg)
		m.form = NewSettingsForm(m.settingsForm)
		m.state = constants.StateEditSettings
		return m, m.form.Init()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab):
			if m.state == constants.StateGoals {
				m.state = constants.StateSettings
			} else {
				m.state = constants.StateGoals
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateGoals:
		m.goalsModel, cmd = m.goalsModel.Update(msg)
	case constants.StateSettings:
		m.settingsModel, cmd = m.settingsModel.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	return cmd
}

func (m Model) updateGoalForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = constants.StateGoals
		return m, nil
	}

	cmds := []tea.Cmd{m.updateForm(msg)}

	switch m.form.State {
	case huh.StateCompleted:
		if m.state == constants.StateAddGoal {
			cmds = append(cmds, addGoalCmd(m.store, m.goalForm.Name))
		} else {
			cmds = append(cmds, renameGoalCmd(m.store, m.editingGoal.ID, m.goalForm.Name))
		}
		m.state = constants.StateGoals
	case huh.StateAborted:
		m.state = constants.StateGoals
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateSettingsForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.settingsForm = NewSettingsFormModel(m.cfg)
		m.state = constants.StateSettings
		return m, nil
	}

	cmds := []tea.Cmd{m.updateForm(msg)}

	switch m.form.State {
	case huh.StateCompleted:
		cfg, err := m.settingsForm.Apply(m.cfg)
		if err != nil {
			m.setStatus(err.Error(), true)
			m.form.State = huh.StateNormal
			return m, tea.Batch(cmds...)
		}
		cmds = append(cmds, saveConfigCmd(m.configPath, cfg))
		m.state = constants.StateSettings
	case huh.StateAborted:
		m.settingsForm = NewSettingsFormModel(m.cfg)
		m.state = constants.StateSettings
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		m.state = constants.StateGoals
		return m, deleteGoalCmd(m.store, m.deletingGoal)
	case key.Matches(keyMsg, m.keys.Cancel):
		m.state = constants.StateGoals
	}
	return m, nil
}
