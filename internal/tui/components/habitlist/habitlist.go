package habitlist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitcycle/internal/constants"
	"github.com/julianstephens/habitcycle/internal/models"
	"github.com/julianstephens/habitcycle/internal/stats"
)

type CheckInMsg struct {
	HabitID string
	Level   models.CompletionLevel
}

type NextCycleMsg struct {
	HabitID string
}

type AddHabitMsg struct{}

type DeleteHabitMsg struct {
	HabitID string
	Title   string
}

type Item struct {
	Row stats.SummaryRow
}

func (i Item) Title() string {
	return i.Row.Emoji + " " + i.Row.Title
}

func (i Item) Description() string {
	var cells strings.Builder
	for _, l := range i.Row.Slots {
		cells.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(l.Color())).Render(glyph(l)))
	}
	if i.Row.Waiting {
		return fmt.Sprintf("%s  cycle %d ended, press n to start the next one", cells.String(), i.Row.CurrentCycle)
	}
	return fmt.Sprintf("%s  day %d/%d · %d done · streak %d · today %s",
		cells.String(), i.Row.CycleDay, constants.CycleLength, i.Row.CompletedDays, i.Row.Streak, i.Row.TodayLevel.DisplayName())
}

func (i Item) FilterValue() string { return i.Row.Title }

func glyph(l models.CompletionLevel) string {
	switch l {
	case models.LevelMini:
		return "▂"
	case models.LevelMore:
		return "▅"
	case models.LevelMax:
		return "█"
	case models.LevelSkip:
		return "~"
	}
	return "·"
}

type KeyMap struct {
	Mini   key.Binding
	More   key.Binding
	Max    key.Binding
	Skip   key.Binding
	Clear  key.Binding
	Next   key.Binding
	Add    key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Mini: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "mini"),
		),
		More: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "more"),
		),
		Max: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "max"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip"),
		),
		Clear: key.NewBinding(
			key.WithKeys("0", "x"),
			key.WithHelp("0/x", "clear"),
		),
		Next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next cycle"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

// Bindings returns every binding in help order.
func (k KeyMap) Bindings() []key.Binding {
	return []key.Binding{k.Mini, k.More, k.Max, k.Skip, k.Clear, k.Next, k.Add, k.Delete}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(rows []stats.SummaryRow, width, height int) Model {
	l := list.New(toItems(rows), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)

	return Model{list: l, keys: DefaultKeyMap()}
}

func toItems(rows []stats.SummaryRow) []list.Item {
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = Item{Row: r}
	}
	return items
}

func (m *Model) SetRows(rows []stats.SummaryRow) {
	m.list.SetItems(toItems(rows))
}

// Selected returns the row under the cursor.
func (m Model) Selected() (stats.SummaryRow, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Row, ok
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, m.keys.Add) {
			return m, func() tea.Msg { return AddHabitMsg{} }
		}

		row, ok := m.Selected()
		if ok {
			checkIn := func(level models.CompletionLevel) tea.Cmd {
				return func() tea.Msg { return CheckInMsg{HabitID: row.HabitID, Level: level} }
			}
			switch {
			case key.Matches(msg, m.keys.Mini):
				return m, checkIn(models.LevelMini)
			case key.Matches(msg, m.keys.More):
				return m, checkIn(models.LevelMore)
			case key.Matches(msg, m.keys.Max):
				return m, checkIn(models.LevelMax)
			case key.Matches(msg, m.keys.Skip):
				return m, checkIn(models.LevelSkip)
			case key.Matches(msg, m.keys.Clear):
				return m, checkIn(models.LevelNone)
			case key.Matches(msg, m.keys.Next):
				return m, func() tea.Msg { return NextCycleMsg{HabitID: row.HabitID} }
			case key.Matches(msg, m.keys.Delete):
				return m, func() tea.Msg { return DeleteHabitMsg{HabitID: row.HabitID, Title: row.Title} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
