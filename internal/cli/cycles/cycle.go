package cycles

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/julianstephens/habitcycle/internal/cli"
	"github.com/julianstephens/habitcycle/internal/constants"
	"github.com/julianstephens/habitcycle/internal/cycle"
	"github.com/julianstephens/habitcycle/internal/lifecycle"
	"github.com/julianstephens/habitcycle/internal/stats"
)

type CycleCmd struct {
	Status  CycleStatusCmd  `cmd:"" help:"Show the current cycle of a habit." default:"1"`
	Next    CycleNextCmd    `cmd:"" help:"Start the next cycle of a habit whose cycle has ended."`
	Review  CycleReviewCmd  `cmd:"" help:"Chart the level breakdown of a cycle."`
	History CycleHistoryCmd `cmd:"" help:"List the closed cycles of a habit."`
}

type CycleStatusCmd struct {
	Habit string `arg:"" optional:"" help:"Habit ID, ID prefix or title. Defaults to every active habit."`
}

func (c *CycleStatusCmd) Run(ctx *cli.Context) error {
	now := ctx.Now()
	snaps, err := snapshots(ctx, c.Habit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		ctx.Println("No active habits.")
		return nil
	}

	for _, s := range snaps {
		h := s.Habit
		if h.WaitingForNextCycle {
			ctx.Printf("%s %s: cycle %d ended, waiting to start cycle %d\n", h.Emoji, h.Title, h.CurrentCycle, h.CurrentCycle+1)
			continue
		}
		v := cli.OpenCycle(h, s.Records, now)
		if h.Active {
			ctx.Printf("%s %s: cycle %d, day %d/%d\n", h.Emoji, h.Title, v.Number, v.Day, constants.CycleLength)
		} else {
			ctx.Printf("%s %s: cycle %d (%s), paused\n", h.Emoji, h.Title, v.Number, v.Range())
		}
		done := v.Completed()
		ctx.Printf("  %s  %d/%d done (%.0f%%), need %d for success\n",
			cli.SlotBar(v.Slots),
			done, constants.CycleLength,
			float64(done)/float64(constants.CycleLength)*100,
			constants.SuccessThreshold)
	}
	return nil
}

type CycleNextCmd struct {
	Habit string `arg:"" help:"Habit ID, ID prefix or title."`
}

func (c *CycleNextCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Manager.GetHabit(c.Habit)
	if err != nil {
		return err
	}
	now := ctx.Now()
	next, err := ctx.Manager.StartNextCycle(h.ID, now)
	if errors.Is(err, lifecycle.ErrNotWaiting) {
		return fmt.Errorf("cycle %d of %q is still running until %s", h.CurrentCycle, h.Title,
			cycle.CycleEndDate(h, now).Format(constants.DateFormat))
	}
	if err != nil {
		return fmt.Errorf("failed to start next cycle: %w", err)
	}

	first, last := cycle.Window(next.StartDate, next.CurrentCycle)
	ctx.Printf("Started cycle %d of %s: %s .. %s\n", next.CurrentCycle, next.Title,
		first.Format(constants.DateFormat), last.Format(constants.DateFormat))
	return nil
}

type CycleReviewCmd struct {
	Habit  string `arg:"" help:"Habit ID, ID prefix or title."`
	Cycle  *int   `help:"Cycle number to review. Defaults to the current cycle."`
	Width  int    `help:"Chart width." default:"50"`
	Height int    `help:"Chart height." default:"10"`
}

func (c *CycleReviewCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Manager.GetHabit(c.Habit)
	if err != nil {
		return err
	}
	snap, err := ctx.Manager.Snapshot(h.ID)
	if err != nil {
		return err
	}
	now := ctx.Now()

	n := h.CurrentCycle
	if c.Cycle != nil {
		n = *c.Cycle
	}
	v, err := cli.ReviewCycle(snap, n, now)
	if err != nil {
		return err
	}
	b := stats.CountSlots(v.Slots)
	if _, ok := stats.FindHistory(snap.Histories, n); ok {
		b = stats.PieChartBreakdown(snap, now, &n)
	}

	ctx.Printf("%s %s, cycle %d (%s)\n\n", h.Emoji, h.Title, n, v.Range())
	ctx.Println(cli.BreakdownChart(b, c.Width, c.Height))
	ctx.Printf("\nMINI %d  MORE %d  MAX %d  SKIP %d  none %d\n", b.Mini, b.More, b.Max, b.Skip, b.None)
	ctx.Printf("Completed %d/%d\n", b.Completed(), constants.CycleLength)
	ctx.Printf("  %s\n\n", cli.SlotBar(v.Slots))
	return cli.WriteDayTable(ctx.Stdout(), v.Slots, cycle.Today(now))
}

type CycleHistoryCmd struct {
	Habit string `arg:"" help:"Habit ID, ID prefix or title."`
}

func (c *CycleHistoryCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Manager.GetHabit(c.Habit)
	if err != nil {
		return err
	}
	snap, err := ctx.Manager.Snapshot(h.ID)
	if err != nil {
		return err
	}
	if len(snap.Histories) == 0 {
		ctx.Printf("%s has no closed cycles yet.\n", h.Title)
		return nil
	}

	w := tabwriter.NewWriter(ctx.Stdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CYCLE\tSTART\tEND\tDONE\tMINI\tMORE\tMAX\tSKIP\tRESULT")
	for _, hist := range snap.Histories {
		result := "missed"
		if hist.Successful {
			result = "success"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d/%d\t%d\t%d\t%d\t%d\t%s\n",
			hist.CycleNumber, hist.StartDay, hist.EndDay, hist.CompletedDays, constants.CycleLength,
			hist.MiniCount, hist.MoreCount, hist.MaxCount, hist.SkipCount, result)
	}
	return w.Flush()
}

// snapshots returns the named habit, or every active habit when ref is empty.
func snapshots(ctx *cli.Context, ref string) ([]stats.Snapshot, error) {
	if ref == "" {
		return ctx.Manager.Snapshots(true)
	}
	h, err := ctx.Manager.GetHabit(ref)
	if err != nil {
		return nil, err
	}
	s, err := ctx.Manager.Snapshot(h.ID)
	if err != nil {
		return nil, err
	}
	return []stats.Snapshot{s}, nil
}
