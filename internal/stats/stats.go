// Package stats aggregates a habit's records and cycle histories.
// Every function is pure and works on a Snapshot copied out of the store.
package stats

import (
	"time"

	"github.com/julianstephens/habitcycle/internal/constants"
	"github.com/julianstephens/habitcycle/internal/cycle"
	"github.com/julianstephens/habitcycle/internal/models"
)

// Snapshot is an owned copy of a habit and its children for one computation.
type Snapshot struct {
	Habit     models.Habit
	Records   []models.DailyRecord
	Histories []models.CycleHistory
}

// LevelTally counts MINI, MORE and MAX check-ins.
type LevelTally struct {
	Mini int `json:"mini"`
	More int `json:"more"`
	Max  int `json:"max"`
}

// Breakdown is the per-level distribution of one cycle's 20 days.
type Breakdown struct {
	Mini int `json:"mini"`
	More int `json:"more"`
	Max  int `json:"max"`
	Skip int `json:"skip"`
	None int `json:"none"`
}

// Completed returns the number of days that count as done.
func (b Breakdown) Completed() int {
	return b.Mini + b.More + b.Max + b.Skip
}

// Totals folds every cycle of a habit together.
type Totals struct {
	TotalDays        int `json:"total_days"`
	CompletedDays    int `json:"completed_days"`
	Mini             int `json:"mini"`
	More             int `json:"more"`
	Max              int `json:"max"`
	Skip             int `json:"skip"`
	SuccessfulCycles int `json:"successful_cycles"`
}

// CompletionRate is the share of records whose level is not none. 0 without records.
func CompletionRate(records []models.DailyRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	done := 0
	for _, r := range records {
		if r.Level.Completed() {
			done++
		}
	}
	return float64(done) / float64(len(records))
}

// CurrentStreak counts consecutive completed days ending today.
// A missing record or a none record ends the streak.
func CurrentStreak(records []models.DailyRecord, now time.Time) int {
	byDay := make(map[string]models.CompletionLevel, len(records))
	for _, r := range records {
		byDay[r.Day] = r.Level
	}

	streak := 0
	for d := now; ; d = d.AddDate(0, 0, -1) {
		level, ok := byDay[cycle.Today(d)]
		if !ok || !level.Completed() {
			return streak
		}
		streak++
	}
}

// LevelCounts tallies MINI, MORE and MAX over all records, regardless of cycle.
func LevelCounts(records []models.DailyRecord) LevelTally {
	var t LevelTally
	for _, r := range records {
		switch r.Level {
		case models.LevelMini:
			t.Mini++
		case models.LevelMore:
			t.More++
		case models.LevelMax:
			t.Max++
		}
	}
	return t
}

// CountSlots distributes a cycle's slots over the levels. Absent slots count as none.
func CountSlots(slots []cycle.Slot) Breakdown {
	var b Breakdown
	for _, s := range slots {
		switch s.Level() {
		case models.LevelMini:
			b.Mini++
		case models.LevelMore:
			b.More++
		case models.LevelMax:
			b.Max++
		case models.LevelSkip:
			b.Skip++
		default:
			b.None++
		}
	}
	return b
}

// CurrentCycleCompletedDays counts completed slots in the window containing now.
func CurrentCycleCompletedDays(habit models.Habit, records []models.DailyRecord, now time.Time) int {
	return CountSlots(cycle.CycleRecordSlots(habit, records, now)).Completed()
}

// CurrentCycleCompletionRate is completed days over the fixed cycle length.
func CurrentCycleCompletionRate(habit models.Habit, records []models.DailyRecord, now time.Time) float64 {
	return float64(CurrentCycleCompletedDays(habit, records, now)) / float64(cycle.Length)
}

// AllCyclesStats sums every frozen cycle and, unless the habit is waiting for
// its next cycle, the live counts of the cycle in progress.
func AllCyclesStats(s Snapshot, now time.Time) Totals {
	var t Totals
	for _, h := range s.Histories {
		t.TotalDays += cycle.Length
		t.CompletedDays += h.CompletedDays
		t.Mini += h.MiniCount
		t.More += h.MoreCount
		t.Max += h.MaxCount
		t.Skip += h.SkipCount
		if h.Successful {
			t.SuccessfulCycles++
		}
	}

	if !s.Habit.WaitingForNextCycle {
		live := CountSlots(cycle.CycleRecordSlots(s.Habit, s.Records, now))
		t.TotalDays += cycle.Length
		t.CompletedDays += live.Completed()
		t.Mini += live.Mini
		t.More += live.More
		t.Max += live.Max
		t.Skip += live.Skip
	}
	return t
}

// FindHistory returns the frozen history of cycle n, if any.
func FindHistory(histories []models.CycleHistory, n int) (models.CycleHistory, bool) {
	for _, h := range histories {
		if h.CycleNumber == n {
			return h, true
		}
	}
	return models.CycleHistory{}, false
}

// PieChartBreakdown returns the frozen counts of cycleNumber when it has a
// history, otherwise the live counts of the window containing now.
func PieChartBreakdown(s Snapshot, now time.Time, cycleNumber *int) Breakdown {
	if cycleNumber != nil {
		if h, ok := FindHistory(s.Histories, *cycleNumber); ok {
			return Breakdown{
				Mini: h.MiniCount,
				More: h.MoreCount,
				Max:  h.MaxCount,
				Skip: h.SkipCount,
				None: cycle.Length - h.CompletedDays,
			}
		}
	}
	return CountSlots(cycle.CycleRecordSlots(s.Habit, s.Records, now))
}

// DaysFromStart returns the calendar days elapsed since the habit started, floored at 0.
func DaysFromStart(habit models.Habit, now time.Time) int {
	return max(cycle.DaysBetween(habit.StartDate, now), 0)
}

// SummaryRow is the compact per-habit status shown by `summary` and the TUI.
type SummaryRow struct {
	HabitID       string                   `json:"habit_id"`
	Title         string                   `json:"title"`
	Emoji         string                   `json:"emoji"`
	TodayLevel    models.CompletionLevel   `json:"today_level"`
	Slots         []models.CompletionLevel `json:"slots"`
	CycleDay      int                      `json:"cycle_day"`
	CompletedDays int                      `json:"completed_days"`
	CurrentCycle  int                      `json:"current_cycle"`
	Streak        int                      `json:"streak"`
	Waiting       bool                     `json:"waiting"`
}

// Summary builds the status row of one habit.
func Summary(s Snapshot, now time.Time) SummaryRow {
	slots := cycle.CycleRecordSlots(s.Habit, s.Records, now)
	levels := make([]models.CompletionLevel, len(slots))
	for i, slot := range slots {
		levels[i] = slot.Level()
	}

	today := models.LevelNone
	for _, r := range s.Records {
		if r.Day == now.Format(constants.DateFormat) {
			today = r.Level
			break
		}
	}

	return SummaryRow{
		HabitID:       s.Habit.ID,
		Title:         s.Habit.Title,
		Emoji:         s.Habit.Emoji,
		TodayLevel:    today,
		Slots:         levels,
		CycleDay:      cycle.CycleDayIndex(s.Habit, now),
		CompletedDays: CountSlots(slots).Completed(),
		CurrentCycle:  s.Habit.CurrentCycle,
		Streak:        CurrentStreak(s.Records, now),
		Waiting:       s.Habit.WaitingForNextCycle,
	}
}
