package cycles

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/julianstephens/habitcycle/internal/cli"
	"github.com/julianstephens/habitcycle/internal/stats"
)

// StatsCmd prints lifetime statistics of one or every active habit.
type StatsCmd struct {
	Habit string `arg:"" optional:"" help:"Habit ID, ID prefix or title. Defaults to every active habit."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	snaps, err := snapshots(ctx, c.Habit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		ctx.Println("No active habits.")
		return nil
	}

	now := ctx.Now()
	for i, s := range snaps {
		if i > 0 {
			ctx.Println()
		}
		t := stats.AllCyclesStats(s, now)
		counts := stats.LevelCounts(s.Records)

		ctx.Printf("%s %s\n", s.Habit.Emoji, s.Habit.Title)
		ctx.Printf("  Days since start:     %d\n", stats.DaysFromStart(s.Habit, now))
		ctx.Printf("  Current streak:       %d\n", stats.CurrentStreak(s.Records, now))
		ctx.Printf("  Check-in rate:        %.0f%%\n", stats.CompletionRate(s.Records)*100)
		ctx.Printf("  Days completed:       %d/%d\n", t.CompletedDays, t.TotalDays)
		ctx.Printf("  Successful cycles:    %d of %d closed\n", t.SuccessfulCycles, len(s.Histories))
		ctx.Printf("  MINI/MORE/MAX:        %d/%d/%d\n", counts.Mini, counts.More, counts.Max)
	}
	return nil
}

// SummaryCmd prints the compact widget rows of every active habit.
type SummaryCmd struct {
	JSON bool `help:"Print rows as JSON."`
}

func (c *SummaryCmd) Run(ctx *cli.Context) error {
	snaps, err := ctx.Manager.Snapshots(true)
	if err != nil {
		return err
	}
	now := ctx.Now()

	rows := make([]stats.SummaryRow, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, stats.Summary(s, now))
	}

	if c.JSON {
		enc := json.NewEncoder(ctx.Stdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		ctx.Println("No active habits.")
		return nil
	}
	w := tabwriter.NewWriter(ctx.Stdout(), 0, 0, 2, ' ', 0)
	for _, r := range rows {
		var cells strings.Builder
		for _, l := range r.Slots {
			cells.WriteString(cli.LevelGlyph(l))
		}
		state := fmt.Sprintf("day %d", r.CycleDay)
		if r.Waiting {
			state = "waiting"
		}
		fmt.Fprintf(w, "%s %s\t%s\t%s\t%d/20\ttoday: %s\n",
			r.Emoji, r.Title, cells.String(), state, r.CompletedDays, cli.FormatLevel(r.TodayLevel))
	}
	return w.Flush()
}
