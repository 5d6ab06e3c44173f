package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitcycle/internal/cli"
	"github.com/julianstephens/habitcycle/internal/models"
)

// CheckCmd records a day's check-in for a habit.
type CheckCmd struct {
	Habit string   `arg:"" help:"Habit ID, ID prefix or title."`
	Level string   `arg:"" help:"Completion level: mini, more, max, skip or none." default:"mini"`
	Items []string `help:"Goal items completed at this level." sep:","`
	Memo  *string  `help:"Note for the day."`
	Day   string   `help:"Day to check in (YYYY-MM-DD, today or yesterday)." default:"today"`
}

func (c *CheckCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Manager.GetHabit(c.Habit)
	if err != nil {
		return err
	}
	level, err := models.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	now := ctx.Now()
	day, err := resolveDay(c.Day, now)
	if err != nil {
		return err
	}

	var rec models.DailyRecord
	if len(c.Items) == 0 {
		rec, err = ctx.Manager.UpdateRecord(h.ID, level, c.Memo, day, now)
	} else {
		rec, err = ctx.Manager.UpdateRecordItems(h.ID, level, trimItems(c.Items), c.Memo, day, now)
	}
	if err != nil {
		return fmt.Errorf("failed to check in: %w", err)
	}

	ctx.Printf("%s %s on %s: %s", h.Emoji, h.Title, rec.Day, cli.FormatLevel(rec.Level))
	if len(rec.SelectedItems) > 0 {
		ctx.Printf(" (%s)", strings.Join(rec.SelectedItems, ", "))
	}
	ctx.Println()
	if h.WaitingForNextCycle {
		ctx.Printf("Note: cycle %d has ended. Run 'habitcycle cycle next %s' to start the next one.\n", h.CurrentCycle, h.Title)
	}
	return nil
}
