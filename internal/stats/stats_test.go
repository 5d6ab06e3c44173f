package stats

import (
	"math"
	"testing"
	"time"

	"github.com/julianstephens/habitcycle/internal/cycle"
	"github.com/julianstephens/habitcycle/internal/models"
)

var start = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

func at(dayOffset int) time.Time {
	return start.AddDate(0, 0, dayOffset).Add(9 * time.Hour)
}

func rec(dayOffset int, level models.CompletionLevel) models.DailyRecord {
	return models.DailyRecord{
		ID:    start.AddDate(0, 0, dayOffset).Format("20060102"),
		Day:   start.AddDate(0, 0, dayOffset).Format("2006-01-02"),
		Level: level,
	}
}

func testHabit() models.Habit {
	return models.Habit{ID: "h1", Title: "Read", StartDate: start, CurrentCycle: 1, Active: true}
}

func TestCompletionRate(t *testing.T) {
	if got := CompletionRate(nil); got != 0 {
		t.Errorf("CompletionRate(nil) = %v, want 0", got)
	}

	records := []models.DailyRecord{
		rec(0, models.LevelMini),
		rec(1, models.LevelNone),
		rec(2, models.LevelSkip),
		rec(3, models.LevelNone),
	}
	if got := CompletionRate(records); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("CompletionRate() = %v, want 0.5", got)
	}
}

func TestCurrentCycleCompletedDaysCountsSkip(t *testing.T) {
	habit := testHabit()
	records := []models.DailyRecord{
		rec(0, models.LevelMini),
		rec(1, models.LevelMore),
		rec(2, models.LevelMax),
		rec(3, models.LevelNone),
		rec(4, models.LevelSkip),
	}

	// mini, more, max and skip count; only the explicit none on day 3 is a miss.
	if got := CurrentCycleCompletedDays(habit, records, at(5)); got != 4 {
		t.Errorf("CurrentCycleCompletedDays() = %d, want 4", got)
	}
	if got := CurrentCycleCompletionRate(habit, records, at(5)); math.Abs(got-0.2) > 1e-9 {
		t.Errorf("CurrentCycleCompletionRate() = %v, want 0.2", got)
	}
}

func TestCurrentCycleCompletedDaysNeverExceedsLength(t *testing.T) {
	habit := testHabit()
	var records []models.DailyRecord
	for i := 0; i < 60; i++ {
		records = append(records, rec(i, models.LevelMax))
	}
	for i := 0; i < 60; i++ {
		if got := CurrentCycleCompletedDays(habit, records, at(i)); got > cycle.Length {
			t.Fatalf("day %d: completed days = %d > %d", i, got, cycle.Length)
		}
	}
}

func TestCurrentStreak(t *testing.T) {
	tests := []struct {
		name    string
		records []models.DailyRecord
		want    int
	}{
		{
			name: "today and yesterday then a gap",
			records: []models.DailyRecord{
				rec(10, models.LevelMini),
				rec(9, models.LevelMax),
				rec(7, models.LevelMore),
			},
			want: 2,
		},
		{
			name:    "nothing today",
			records: []models.DailyRecord{rec(9, models.LevelMax), rec(8, models.LevelMax)},
			want:    0,
		},
		{
			name: "none record breaks the streak",
			records: []models.DailyRecord{
				rec(10, models.LevelSkip),
				rec(9, models.LevelNone),
				rec(8, models.LevelMax),
			},
			want: 1,
		},
		{name: "no records", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentStreak(tt.records, at(10)); got != tt.want {
				t.Errorf("CurrentStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLevelCounts(t *testing.T) {
	records := []models.DailyRecord{
		rec(0, models.LevelMini),
		rec(1, models.LevelMini),
		rec(2, models.LevelMax),
		rec(30, models.LevelMore), // another cycle still counts
		rec(31, models.LevelSkip),
	}
	got := LevelCounts(records)
	want := LevelTally{Mini: 2, More: 1, Max: 1}
	if got != want {
		t.Errorf("LevelCounts() = %+v, want %+v", got, want)
	}
}

func TestAllCyclesStats(t *testing.T) {
	habit := testHabit()
	habit.CurrentCycle = 3
	histories := []models.CycleHistory{
		{CycleNumber: 1, CompletedDays: 16, Successful: true, MiniCount: 10, MoreCount: 4, MaxCount: 2},
		{CycleNumber: 2, CompletedDays: 5, Successful: false, MiniCount: 3, SkipCount: 2},
	}
	records := []models.DailyRecord{rec(40, models.LevelMax), rec(41, models.LevelSkip)}

	s := Snapshot{Habit: habit, Records: records, Histories: histories}
	got := AllCyclesStats(s, at(42))
	want := Totals{TotalDays: 60, CompletedDays: 23, Mini: 13, More: 4, Max: 3, Skip: 3, SuccessfulCycles: 1}
	if got != want {
		t.Errorf("AllCyclesStats() active = %+v, want %+v", got, want)
	}

	s.Habit.WaitingForNextCycle = true
	got = AllCyclesStats(s, at(42))
	want = Totals{TotalDays: 40, CompletedDays: 21, Mini: 13, More: 4, Max: 2, Skip: 2, SuccessfulCycles: 1}
	if got != want {
		t.Errorf("AllCyclesStats() waiting = %+v, want %+v", got, want)
	}
}

func TestPieChartBreakdown(t *testing.T) {
	habit := testHabit()
	records := []models.DailyRecord{
		rec(0, models.LevelMini),
		rec(1, models.LevelMore),
		rec(2, models.LevelNone),
		rec(3, models.LevelSkip),
	}
	s := Snapshot{
		Habit:   habit,
		Records: records,
		Histories: []models.CycleHistory{
			{CycleNumber: 1, CompletedDays: 12, MiniCount: 5, MoreCount: 4, MaxCount: 2, SkipCount: 1},
		},
	}

	live := PieChartBreakdown(s, at(5), nil)
	if want := (Breakdown{Mini: 1, More: 1, Skip: 1, None: 17}); live != want {
		t.Errorf("live breakdown = %+v, want %+v", live, want)
	}

	n := 1
	frozen := PieChartBreakdown(s, at(5), &n)
	if want := (Breakdown{Mini: 5, More: 4, Max: 2, Skip: 1, None: 8}); frozen != want {
		t.Errorf("frozen breakdown = %+v, want %+v", frozen, want)
	}

	missing := 7
	if got := PieChartBreakdown(s, at(5), &missing); got != live {
		t.Errorf("unknown cycle should fall back to live counts, got %+v", got)
	}
}

func TestDaysFromStart(t *testing.T) {
	habit := testHabit()
	if got := DaysFromStart(habit, at(12)); got != 12 {
		t.Errorf("DaysFromStart() = %d, want 12", got)
	}
	if got := DaysFromStart(habit, at(-3)); got != 0 {
		t.Errorf("DaysFromStart() before start = %d, want 0", got)
	}
}

func TestSummary(t *testing.T) {
	habit := testHabit()
	records := []models.DailyRecord{rec(2, models.LevelMax), rec(3, models.LevelMini)}

	row := Summary(Snapshot{Habit: habit, Records: records}, at(3))
	if row.TodayLevel != models.LevelMini {
		t.Errorf("TodayLevel = %s, want MINI", row.TodayLevel)
	}
	if row.CycleDay != 4 {
		t.Errorf("CycleDay = %d, want 4", row.CycleDay)
	}
	if row.CompletedDays != 2 || row.Streak != 2 {
		t.Errorf("CompletedDays = %d, Streak = %d, want 2 and 2", row.CompletedDays, row.Streak)
	}
	if len(row.Slots) != cycle.Length || row.Slots[2] != models.LevelMax {
		t.Errorf("Slots = %v", row.Slots)
	}
}
