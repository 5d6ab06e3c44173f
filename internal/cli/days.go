package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/julianstephens/habitcycle/internal/constants"
	"github.com/julianstephens/habitcycle/internal/cycle"
	"github.com/julianstephens/habitcycle/internal/models"
	"github.com/julianstephens/habitcycle/internal/stats"
)

// CycleView is one 20-day window of a habit resolved against its records.
// Day is the 1-based position of now in the window, 0 when now is outside it.
type CycleView struct {
	Number int
	First  time.Time
	Last   time.Time
	Day    int
	Slots  []cycle.Slot
}

// Completed returns the number of slots with a completed level.
func (v CycleView) Completed() int {
	return stats.CountSlots(v.Slots).Completed()
}

// Range formats the window as "first .. last".
func (v CycleView) Range() string {
	return v.First.Format(constants.DateFormat) + " .. " + v.Last.Format(constants.DateFormat)
}

// OpenCycle returns the cycle a habit is in. Inactive habits are frozen in
// the window of CurrentCycle since the cycle scan skips them.
func OpenCycle(h models.Habit, records []models.DailyRecord, now time.Time) CycleView {
	if h.Active {
		return CycleView{
			Number: h.CurrentCycle,
			First:  cycle.CycleStartDate(h, now),
			Last:   cycle.CycleEndDate(h, now),
			Day:    cycle.CycleDayIndex(h, now),
			Slots:  cycle.CycleRecordSlots(h, records, now),
		}
	}
	first, last := cycle.Window(h.StartDate, h.CurrentCycle)
	return newView(h.CurrentCycle, first, last, records, now)
}

// ReviewCycle returns cycle n of a snapshot: the frozen window when n has a
// history, otherwise the open cycle when n is the current one.
func ReviewCycle(s stats.Snapshot, n int, now time.Time) (CycleView, error) {
	if hist, ok := stats.FindHistory(s.Histories, n); ok {
		first, err := cycle.ParseDay(hist.StartDay)
		if err != nil {
			return CycleView{}, fmt.Errorf("cycle %d has a malformed start day: %w", n, err)
		}
		return newView(n, first, cycle.AddDays(first, cycle.Length-1), s.Records, now), nil
	}
	if n != s.Habit.CurrentCycle {
		return CycleView{}, fmt.Errorf("cycle %d of %q has no history", n, s.Habit.Title)
	}
	return OpenCycle(s.Habit, s.Records, now), nil
}

func newView(n int, first, last time.Time, records []models.DailyRecord, now time.Time) CycleView {
	v := CycleView{Number: n, First: first, Last: last, Slots: cycle.SlotsFrom(first, records)}
	if d := cycle.DaysBetween(first, now); d >= 0 && d < cycle.Length {
		v.Day = d + 1
	}
	return v
}

// WriteDayTable lists the slots up to and including through, one row per
// day with its level, selected items and memo.
func WriteDayTable(out io.Writer, slots []cycle.Slot, through string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DAY\tLEVEL\tITEMS\tMEMO")
	for _, s := range slots {
		if s.Day > through {
			break
		}
		items, memo := "-", "-"
		if s.Record != nil {
			if len(s.Record.SelectedItems) > 0 {
				items = strings.Join(s.Record.SelectedItems, ", ")
			}
			if s.Record.Memo != nil {
				memo = strings.Join(strings.Fields(*s.Record.Memo), " ")
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Day, FormatLevel(s.Level()), items, memo)
	}
	return w.Flush()
}
