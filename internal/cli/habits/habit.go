package habits

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/julianstephens/habitcycle/internal/cli"
	"github.com/julianstephens/habitcycle/internal/constants"
	"github.com/julianstephens/habitcycle/internal/cycle"
	"github.com/julianstephens/habitcycle/internal/models"
	"github.com/julianstephens/habitcycle/internal/stats"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits." default:"1"`
	Edit   HabitEditCmd   `cmd:"" help:"Edit a habit."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit with all of its records and histories."`
	Show   HabitShowCmd   `cmd:"" help:"Show a habit and its current cycle."`
}

type HabitAddCmd struct {
	Title    string   `arg:"" help:"Habit title."`
	Start    string   `help:"Start date (YYYY-MM-DD). Defaults to today."`
	Color    string   `help:"Display color as a hex value (RRGGBB)."`
	Emoji    string   `help:"Display emoji."`
	Mini     []string `help:"MINI goal items." sep:","`
	More     []string `help:"MORE goal items." sep:","`
	Max      []string `help:"MAX goal items." sep:","`
	Reminder string   `help:"Daily reminder time (HH:MM)."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	now := ctx.Now()
	h := models.Habit{
		Title:           c.Title,
		ColorHex:        c.Color,
		Emoji:           c.Emoji,
		MiniItems:       trimItems(c.Mini),
		MoreItems:       trimItems(c.More),
		MaxItems:        trimItems(c.Max),
		ReminderEnabled: c.Reminder != "",
		ReminderTime:    c.Reminder,
	}
	if c.Start != "" {
		start, err := cycle.ParseDay(c.Start)
		if err != nil {
			return fmt.Errorf("invalid start date %q (expected YYYY-MM-DD)", c.Start)
		}
		h.StartDate = start
	}

	added, err := ctx.Manager.AddHabit(h, now)
	if err != nil {
		return fmt.Errorf("failed to add habit: %w", err)
	}

	ctx.Printf("Added habit: %s %s (ID: %s)\n", added.Emoji, added.Title, added.ID)
	ctx.Printf("Cycle %d, day %d of %d\n", added.CurrentCycle, cycle.CycleDayIndex(added, now), constants.CycleLength)
	return nil
}

type HabitListCmd struct {
	All bool `help:"Include inactive habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Manager.ListHabits(!c.All)
	if err != nil {
		return fmt.Errorf("failed to list habits: %w", err)
	}
	if len(habits) == 0 {
		ctx.Println("No habits found. Add one with 'habitcycle habit add <title>'.")
		return nil
	}

	now := ctx.Now()
	w := tabwriter.NewWriter(ctx.Stdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tHABIT\tCYCLE\tDAY\tDONE\tSTATUS")
	for _, h := range habits {
		status := "active"
		switch {
		case !h.Active:
			status = "inactive"
		case h.WaitingForNextCycle:
			status = "waiting for next cycle"
		}
		snap, err := ctx.Manager.Snapshot(h.ID)
		if err != nil {
			return err
		}
		v := cli.OpenCycle(h, snap.Records, now)
		day := "-"
		if v.Day > 0 {
			day = fmt.Sprintf("%d/%d", v.Day, constants.CycleLength)
		}
		fmt.Fprintf(w, "%s\t%s %s\t%d\t%s\t%d\t%s\n",
			shortID(h.ID), h.Emoji, h.Title, v.Number, day, v.Completed(), status)
	}
	return w.Flush()
}

type HabitEditCmd struct {
	Habit    string   `arg:"" help:"Habit ID, ID prefix or title."`
	Title    *string  `help:"New title."`
	Start    *string  `help:"New start date (YYYY-MM-DD). Only allowed before the first cycle closes."`
	Color    *string  `help:"New display color (RRGGBB)."`
	Emoji    *string  `help:"New display emoji."`
	Mini     []string `help:"Replace MINI goal items." sep:","`
	More     []string `help:"Replace MORE goal items." sep:","`
	Max      []string `help:"Replace MAX goal items." sep:","`
	Reminder *string  `help:"Daily reminder time (HH:MM). Empty disables the reminder."`
	Active   *bool    `help:"Set the habit active or inactive (--active=false to pause)."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Manager.GetHabit(c.Habit)
	if err != nil {
		return err
	}

	updated := false
	if c.Title != nil {
		h.Title = *c.Title
		updated = true
	}
	if c.Start != nil {
		start, err := cycle.ParseDay(*c.Start)
		if err != nil {
			return fmt.Errorf("invalid start date %q (expected YYYY-MM-DD)", *c.Start)
		}
		h.StartDate = start
		updated = true
	}
	if c.Color != nil {
		h.ColorHex = *c.Color
		updated = true
	}
	if c.Emoji != nil {
		h.Emoji = *c.Emoji
		updated = true
	}
	if len(c.Mini) > 0 {
		h.MiniItems = trimItems(c.Mini)
		updated = true
	}
	if len(c.More) > 0 {
		h.MoreItems = trimItems(c.More)
		updated = true
	}
	if len(c.Max) > 0 {
		h.MaxItems = trimItems(c.Max)
		updated = true
	}
	if c.Reminder != nil {
		h.ReminderTime = strings.TrimSpace(*c.Reminder)
		h.ReminderEnabled = h.ReminderTime != ""
		updated = true
	}
	if c.Active != nil {
		h.Active = *c.Active
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified.")
		return nil
	}

	if _, err := ctx.Manager.UpdateHabit(h, ctx.Now()); err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	ctx.Printf("Updated habit: %s\n", h.Title)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit ID, ID prefix or title."`
	Yes   bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Manager.GetHabit(c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Delete %q with all of its records and cycle histories?", h.Title))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()

	if err := ctx.Manager.DeleteHabit(h.ID); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	ctx.Printf("Deleted habit: %s\n", h.Title)
	return nil
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit ID, ID prefix or title."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Manager.GetHabit(c.Habit)
	if err != nil {
		return err
	}
	snap, err := ctx.Manager.Snapshot(h.ID)
	if err != nil {
		return err
	}
	now := ctx.Now()

	ctx.Printf("%s %s\n", h.Emoji, h.Title)
	ctx.Printf("  ID:          %s\n", h.ID)
	ctx.Printf("  Started:     %s (%d days ago)\n", h.StartDate.Format(constants.DateFormat), stats.DaysFromStart(h, now))
	ctx.Printf("  Color:       #%s\n", h.ColorHex)
	ctx.Printf("  Active:      %v\n", h.Active)
	if h.HasReminder() {
		ctx.Printf("  Reminder:    %s\n", h.ReminderTime)
	}
	printItems(ctx, "MINI", h.MiniItems)
	printItems(ctx, "MORE", h.MoreItems)
	printItems(ctx, "MAX", h.MaxItems)

	ctx.Println()
	if h.WaitingForNextCycle {
		ctx.Printf("Cycle %d has ended. Run 'habitcycle cycle next %s' to start the next one.\n", h.CurrentCycle, h.Title)
	} else {
		v := cli.OpenCycle(h, snap.Records, now)
		if h.Active {
			ctx.Printf("Cycle %d: %s, day %d of %d\n", v.Number, v.Range(), v.Day, constants.CycleLength)
		} else {
			ctx.Printf("Cycle %d: %s, paused\n", v.Number, v.Range())
		}
		ctx.Printf("  %s\n", cli.SlotBar(v.Slots))
		ctx.Printf("  Completed: %d/%d  Streak: %d\n\n", v.Completed(), constants.CycleLength,
			stats.CurrentStreak(snap.Records, now))
		if err := cli.WriteDayTable(ctx.Stdout(), v.Slots, cycle.Today(now)); err != nil {
			return err
		}
		ctx.Println()
	}
	ctx.Printf("Cycles completed successfully: %d of %d\n", h.CompletedCycles, len(snap.Histories))
	return nil
}

func printItems(ctx *cli.Context, label string, items []string) {
	if len(items) == 0 {
		return
	}
	ctx.Printf("  %-5s        %s\n", label+":", strings.Join(items, ", "))
}

func trimItems(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveDay turns "", "today" or "yesterday" into a civil day relative to now.
func resolveDay(day string, now time.Time) (string, error) {
	switch strings.ToLower(strings.TrimSpace(day)) {
	case "", "today":
		return cycle.Today(now), nil
	case "yesterday":
		return cycle.Today(now.AddDate(0, 0, -1)), nil
	}
	if _, err := cycle.ParseDay(day); err != nil {
		return "", fmt.Errorf("invalid day %q (expected YYYY-MM-DD, today or yesterday)", day)
	}
	return day, nil
}
