// Package tui is the interactive habit dashboard.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitcycle/internal/cycle"
	"github.com/julianstephens/habitcycle/internal/lifecycle"
	"github.com/julianstephens/habitcycle/internal/models"
	"github.com/julianstephens/habitcycle/internal/stats"
	"github.com/julianstephens/habitcycle/internal/tui/components/habitlist"
	"github.com/julianstephens/habitcycle/internal/utils"
)

type SessionState int

const (
	StateDashboard SessionState = iota
	StateAddHabit
	StateConfirmDelete
)

type HabitFormModel struct {
	Title    string
	Emoji    string
	Mini     string
	More     string
	Max      string
	Reminder string
}

type Model struct {
	manager         *lifecycle.Manager
	now             func() time.Time
	state           SessionState
	keys            KeyMap
	help            help.Model
	habits          habitlist.Model
	form            *huh.Form
	habitForm       *HabitFormModel
	habitToDeleteID string
	habitToDelete   string
	status          string
	err             error
	quitting        bool
	width           int
	height          int
}

func NewModel(manager *lifecycle.Manager, now func() time.Time) Model {
	m := Model{
		manager: manager,
		now:     now,
		state:   StateDashboard,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		habits:  habitlist.New(nil, 80, 20),
	}
	m.refresh()
	return m
}

// Run starts the dashboard and blocks until the user quits.
func Run(manager *lifecycle.Manager, now func() time.Time) error {
	_, err := tea.NewProgram(NewModel(manager, now), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

// refresh closes finished cycles and reloads the summary rows.
func (m *Model) refresh() {
	now := m.now()
	if _, err := m.manager.CheckAll(now); err != nil {
		m.err = err
		return
	}
	snaps, err := m.manager.Snapshots(true)
	if err != nil {
		m.err = err
		return
	}
	rows := make([]stats.SummaryRow, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, stats.Summary(s, now))
	}
	m.habits.SetRows(rows)
}

func (m *Model) checkIn(habitID string, level models.CompletionLevel) {
	now := m.now()
	rec, err := m.manager.UpdateRecord(habitID, level, nil, cycle.Today(now), now)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.status = fmt.Sprintf("Checked in %s for %s", rec.Level.DisplayName(), rec.Day)
	m.refresh()
}

func (m *Model) startNextCycle(habitID string) {
	h, err := m.manager.StartNextCycle(habitID, m.now())
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.status = fmt.Sprintf("Started cycle %d of %s", h.CurrentCycle, h.Title)
	m.refresh()
}

func (m *Model) deleteHabit() {
	if err := m.manager.DeleteHabit(m.habitToDeleteID); err != nil {
		m.err = err
	} else {
		m.err = nil
		m.status = fmt.Sprintf("Deleted %s", m.habitToDelete)
	}
	m.habitToDeleteID = ""
	m.habitToDelete = ""
	m.refresh()
}

func (m *Model) newHabitForm() {
	m.habitForm = &HabitFormModel{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&m.habitForm.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Emoji").
				Placeholder("⭐️").
				Value(&m.habitForm.Emoji),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("MINI items").
				Description("Comma separated").
				Value(&m.habitForm.Mini),
			huh.NewInput().
				Title("MORE items").
				Description("Comma separated").
				Value(&m.habitForm.More),
			huh.NewInput().
				Title("MAX items").
				Description("Comma separated").
				Value(&m.habitForm.Max),
			huh.NewInput().
				Title("Reminder (HH:MM)").
				Description("Leave empty for no reminder").
				Value(&m.habitForm.Reminder).
				Validate(func(s string) error {
					if s != "" && !utils.ValidateTimeFormat(s) {
						return fmt.Errorf("use HH:MM")
					}
					return nil
				}),
		),
	).WithShowHelp(true)
}

// saveHabitForm adds the habit described by the completed form.
func (m *Model) saveHabitForm() {
	f := m.habitForm
	reminder := strings.TrimSpace(f.Reminder)
	h, err := m.manager.AddHabit(models.Habit{
		Title:           f.Title,
		Emoji:           strings.TrimSpace(f.Emoji),
		MiniItems:       splitItems(f.Mini),
		MoreItems:       splitItems(f.More),
		MaxItems:        splitItems(f.Max),
		ReminderEnabled: reminder != "",
		ReminderTime:    reminder,
	}, m.now())
	if err != nil {
		m.err = err
	} else {
		m.err = nil
		m.status = fmt.Sprintf("Added %s", h.Title)
	}
	m.form = nil
	m.habitForm = nil
	m.state = StateDashboard
	m.refresh()
}

func splitItems(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (m Model) ShortHelp() []key.Binding {
	if m.state == StateConfirmDelete {
		return []key.Binding{m.keys.Yes, m.keys.No}
	}
	hk := m.habits.Keys()
	return []key.Binding{hk.Mini, hk.More, hk.Max, hk.Next, hk.Add, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down, m.keys.Quit, m.keys.Help},
		m.habits.Keys().Bindings(),
	}
}
