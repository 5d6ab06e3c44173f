package cli

import (
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitcycle/internal/cycle"
	"github.com/julianstephens/habitcycle/internal/models"
	"github.com/julianstephens/habitcycle/internal/stats"
)

// LevelGlyph is the one-character cell drawn for a day.
func LevelGlyph(level models.CompletionLevel) string {
	switch level {
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

// SlotBar renders a cycle's slots as a row of colored cells.
func SlotBar(slots []cycle.Slot) string {
	var b strings.Builder
	for _, s := range slots {
		level := s.Level()
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(level.Color())).Render(LevelGlyph(level)))
	}
	return b.String()
}

// BreakdownChart draws a cycle's level distribution as a bar chart.
func BreakdownChart(b stats.Breakdown, width, height int) string {
	chart := barchart.New(width, height)

	bar := func(level models.CompletionLevel, label string, n int) barchart.BarData {
		return barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  label,
				Value: float64(n),
				Style: lipgloss.NewStyle().Foreground(lipgloss.Color(level.Color())),
			}},
		}
	}
	chart.PushAll([]barchart.BarData{
		bar(models.LevelMini, "MINI", b.Mini),
		bar(models.LevelMore, "MORE", b.More),
		bar(models.LevelMax, "MAX", b.Max),
		bar(models.LevelSkip, "SKIP", b.Skip),
		bar(models.LevelNone, "none", b.None),
	})
	chart.Draw()
	return chart.View()
}
