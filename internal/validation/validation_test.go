package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/habitcycle/internal/models"
)

func baseHabit() models.Habit {
	return models.Habit{
		ID:           "h1",
		Title:        "Read",
		StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:       true,
		CurrentCycle: 2,
		ColorHex:     "FF6B4A",
		MiniItems:    []string{"1 page"},
		MoreItems:    []string{"10 pages"},
		MaxItems:     []string{"1 chapter", "notes"},
	}
}

func TestValidateHabit(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Habit)
		wantErr error
	}{
		{"valid", func(h *models.Habit) {}, nil},
		{"hash color", func(h *models.Habit) { h.ColorHex = "#00ff00" }, nil},
		{"blank title", func(h *models.Habit) { h.Title = "   " }, ErrEmptyTitle},
		{"bad color", func(h *models.Habit) { h.ColorHex = "orange" }, ErrInvalidColor},
		{"reminder without time", func(h *models.Habit) { h.ReminderEnabled = true }, ErrInvalidReminder},
		{"reminder bad time", func(h *models.Habit) { h.ReminderEnabled = true; h.ReminderTime = "25:00" }, ErrInvalidReminder},
		{"reminder ok", func(h *models.Habit) { h.ReminderEnabled = true; h.ReminderTime = "07:15" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := baseHabit()
			tt.mutate(&h)
			err := ValidateHabit(h)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	h := baseHabit()
	h.MoreItems = []string{""}
	if err := ValidateHabit(h); err == nil {
		t.Error("expected error for empty goal item")
	}
}

func TestValidateSelectedItems(t *testing.T) {
	h := baseHabit()

	if err := ValidateSelectedItems(h, models.LevelMax, []string{"notes", "1 chapter"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateSelectedItems(h, models.LevelMini, nil); err != nil {
		t.Errorf("empty selection should be valid: %v", err)
	}
	if err := ValidateSelectedItems(h, models.LevelMini, []string{"1 chapter"}); !errors.Is(err, ErrInvalidItems) {
		t.Errorf("expected ErrInvalidItems for item of another level, got %v", err)
	}
	if err := ValidateSelectedItems(h, models.LevelSkip, []string{"1 page"}); !errors.Is(err, ErrInvalidItems) {
		t.Errorf("expected ErrInvalidItems for SKIP with items, got %v", err)
	}
}

func TestValidateHabits_DuplicateTitles(t *testing.T) {
	validator := New()
	a := baseHabit()
	b := baseHabit()
	b.ID = "h2"
	b.Title = " read "
	c := baseHabit()
	c.ID = "h3"
	c.Title = "Run"

	result := validator.ValidateHabits([]models.Habit{a, b, c})
	if !result.HasConflicts() {
		t.Fatal("Expected to detect duplicate habit titles")
	}
	if result.Conflicts[0].Type != ConflictDuplicateHabitTitle || len(result.Conflicts[0].HabitIDs) != 2 {
		t.Errorf("unexpected conflict %+v", result.Conflicts[0])
	}
}

func TestValidateHabitData(t *testing.T) {
	validator := New()
	h := baseHabit()

	good := models.CycleHistory{
		HabitID: "h1", CycleNumber: 1, StartDay: "2025-01-01", EndDay: "2025-01-20",
		CompletedDays: 15, Successful: true, MiniCount: 10, MaxCount: 5,
	}
	result := validator.ValidateHabitData(HabitData{
		Habit:     h,
		Records:   []models.DailyRecord{{Day: "2025-01-02"}, {Day: "2025-01-03"}},
		Histories: []models.CycleHistory{good},
	})
	if result.HasConflicts() {
		t.Errorf("expected clean data, got %s", result.FormatReport())
	}

	badWindow := good
	badWindow.EndDay = "2025-01-21"
	badFlag := good
	badFlag.CycleNumber = 2
	badFlag.StartDay, badFlag.EndDay = "2025-01-21", "2025-02-09"
	badFlag.Successful = false
	badCounts := good
	badCounts.CycleNumber = 3
	badCounts.StartDay, badCounts.EndDay = "2025-02-10", "2025-03-01"
	badCounts.MiniCount = 1

	result = validator.ValidateHabitData(HabitData{
		Habit:     h,
		Records:   []models.DailyRecord{{Day: "2025-01-02"}, {Day: "2025-01-02"}, {Day: "Jan 3"}},
		Histories: []models.CycleHistory{badWindow, badFlag, badCounts},
	})

	want := map[ConflictType]bool{
		ConflictDuplicateRecord:  false,
		ConflictInvalidRecordDay: false,
		ConflictHistoryWindow:    false,
		ConflictHistorySuccess:   false,
		ConflictHistoryCounts:    false,
		ConflictCycleCounter:     false,
	}
	for _, c := range result.Conflicts {
		want[c.Type] = true
	}
	for typ, found := range want {
		if !found {
			t.Errorf("expected a %s conflict, report:\n%s", typ, result.FormatReport())
		}
	}
}

func TestValidateHabitData_WaitingWithoutHistory(t *testing.T) {
	h := baseHabit()
	h.WaitingForNextCycle = true

	result := New().ValidateHabitData(HabitData{Habit: h})
	if !result.HasConflicts() || result.Conflicts[0].Type != ConflictCycleCounter {
		t.Errorf("expected cycle counter conflict, got %+v", result.Conflicts)
	}
}

func TestFormatReport(t *testing.T) {
	var empty ValidationResult
	if empty.FormatReport() != "No conflicts detected." {
		t.Errorf("unexpected empty report %q", empty.FormatReport())
	}
}
