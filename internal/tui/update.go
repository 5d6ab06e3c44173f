package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitcycle/internal/tui/components/habitlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.habits.SetSize(msg.Width-4, msg.Height-8)
	}

	switch m.state {
	case StateAddHabit:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case habitlist.CheckInMsg:
		m.checkIn(msg.HabitID, msg.Level)
		return m, nil

	case habitlist.NextCycleMsg:
		m.startNextCycle(msg.HabitID)
		return m, nil

	case habitlist.AddHabitMsg:
		m.newHabitForm()
		m.state = StateAddHabit
		return m, m.form.Init()

	case habitlist.DeleteHabitMsg:
		m.habitToDeleteID = msg.HabitID
		m.habitToDelete = msg.Title
		m.state = StateConfirmDelete
		return m, nil
	}

	var cmd tea.Cmd
	m.habits, cmd = m.habits.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Back) {
		m.form = nil
		m.habitForm = nil
		m.state = StateDashboard
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.saveHabitForm()
		return m, nil
	case huh.StateAborted:
		m.form = nil
		m.habitForm = nil
		m.state = StateDashboard
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(k, m.keys.Yes):
		m.deleteHabit()
		m.state = StateDashboard
	case key.Matches(k, m.keys.No):
		m.habitToDeleteID = ""
		m.habitToDelete = ""
		m.state = StateDashboard
	}
	return m, nil
}
