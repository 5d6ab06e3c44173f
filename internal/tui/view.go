package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateAddHabit:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		content = docStyle.Render(m.habits.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("habitcycle")+" "+subtleStyle.Render(m.now().Format("Mon Jan 2")),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return ""
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, max(m.height-4, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Delete "+m.habitToDelete+" with all of its records and cycles?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
