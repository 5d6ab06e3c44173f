package validation

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/julianstephens/habitcycle/internal/constants"
	"github.com/julianstephens/habitcycle/internal/cycle"
	"github.com/julianstephens/habitcycle/internal/models"
	"github.com/julianstephens/habitcycle/internal/utils"
)

var (
	ErrEmptyTitle      = errors.New("habit title cannot be empty")
	ErrInvalidColor    = errors.New("color must be a 6-digit hex value like FF6B4A")
	ErrInvalidReminder = errors.New("reminder time must be HH:MM")
	ErrInvalidItems    = errors.New("selected items do not belong to the level")
)

var hexColor = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

// ValidateHabit checks user-editable habit fields.
func ValidateHabit(h models.Habit) error {
	if strings.TrimSpace(h.Title) == "" {
		return ErrEmptyTitle
	}
	if h.ColorHex != "" && !hexColor.MatchString(h.ColorHex) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, h.ColorHex)
	}
	if (h.ReminderEnabled || h.ReminderTime != "") && !utils.ValidateTimeFormat(h.ReminderTime) {
		return fmt.Errorf("%w: %q", ErrInvalidReminder, h.ReminderTime)
	}
	for _, list := range [][]string{h.MiniItems, h.MoreItems, h.MaxItems} {
		for _, item := range list {
			if strings.TrimSpace(item) == "" {
				return errors.New("goal items cannot be empty")
			}
		}
	}
	return nil
}

// ValidateSelectedItems checks that every item is one of the level's goal items.
// SKIP and none accept no items.
func ValidateSelectedItems(h models.Habit, level models.CompletionLevel, items []string) error {
	allowed := h.ItemsFor(level)
	for _, item := range items {
		if !slices.Contains(allowed, item) {
			return fmt.Errorf("%w: %q is not a %s item", ErrInvalidItems, item, level.DisplayName())
		}
	}
	return nil
}

// ConflictType represents the type of data integrity problem
type ConflictType string

const (
	ConflictDuplicateHabitTitle ConflictType = "duplicate_habit_title"
	ConflictInvalidHabit        ConflictType = "invalid_habit"
	ConflictDuplicateRecord     ConflictType = "duplicate_record"
	ConflictInvalidRecordDay    ConflictType = "invalid_record_day"
	ConflictHistoryWindow       ConflictType = "history_window"
	ConflictHistorySuccess      ConflictType = "history_success_flag"
	ConflictHistoryCounts       ConflictType = "history_counts"
	ConflictCycleCounter        ConflictType = "cycle_counter"
)

// Conflict represents a detected integrity problem
type Conflict struct {
	Type        ConflictType
	Description string
	HabitIDs    []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

func (vr *ValidationResult) add(t ConflictType, habitID, format string, args ...any) {
	vr.Conflicts = append(vr.Conflicts, Conflict{
		Type:        t,
		Description: fmt.Sprintf(format, args...),
		HabitIDs:    []string{habitID},
	})
}

// HabitData is one habit with its children, as read for an integrity scan.
type HabitData struct {
	Habit     models.Habit
	Records   []models.DailyRecord
	Histories []models.CycleHistory
}

// Validator scans stored data for integrity problems
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateHabits checks the habit list as a whole and each habit's fields.
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	titles := make(map[string][]string)
	for _, h := range habits {
		key := strings.ToLower(strings.TrimSpace(h.Title))
		if key != "" {
			titles[key] = append(titles[key], h.ID)
		}
		if err := ValidateHabit(h); err != nil {
			result.add(ConflictInvalidHabit, h.ID, "Habit %q is invalid: %v", h.Title, err)
		}
	}

	keys := make([]string, 0, len(titles))
	for k := range titles {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if ids := titles[k]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateHabitTitle,
				Description: fmt.Sprintf("Duplicate habit title: %q (IDs: %v)", k, ids),
				HabitIDs:    ids,
			})
		}
	}

	return result
}

// ValidateHabitData checks a habit's records and frozen histories.
func (v *Validator) ValidateHabitData(d HabitData) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	h := d.Habit

	seen := make(map[string]bool)
	for _, rec := range d.Records {
		if seen[rec.Day] {
			result.add(ConflictDuplicateRecord, h.ID, "Habit %q has more than one record on %s", h.Title, rec.Day)
		}
		seen[rec.Day] = true
		if !utils.ValidateDateFormat(rec.Day) {
			result.add(ConflictInvalidRecordDay, h.ID, "Habit %q has a record with malformed day %q", h.Title, rec.Day)
		}
	}

	for _, hist := range d.Histories {
		first, last := cycle.Window(h.StartDate, hist.CycleNumber)
		if hist.StartDay != first.Format(constants.DateFormat) || hist.EndDay != last.Format(constants.DateFormat) {
			result.add(ConflictHistoryWindow, h.ID, "Habit %q cycle %d covers %s..%s, expected %s..%s",
				h.Title, hist.CycleNumber, hist.StartDay, hist.EndDay,
				first.Format(constants.DateFormat), last.Format(constants.DateFormat))
		}
		if hist.Successful != (hist.CompletedDays >= cycle.SuccessThreshold) {
			result.add(ConflictHistorySuccess, h.ID, "Habit %q cycle %d has %d completed days but successful=%v",
				h.Title, hist.CycleNumber, hist.CompletedDays, hist.Successful)
		}
		sum := hist.MiniCount + hist.MoreCount + hist.MaxCount + hist.SkipCount
		if hist.CompletedDays < 0 || hist.CompletedDays > cycle.Length || sum != hist.CompletedDays {
			result.add(ConflictHistoryCounts, h.ID, "Habit %q cycle %d level counts (%d) do not add up to %d completed days",
				h.Title, hist.CycleNumber, sum, hist.CompletedDays)
		}
		if hist.CycleNumber > h.CurrentCycle {
			result.add(ConflictCycleCounter, h.ID, "Habit %q has a history for cycle %d beyond its current cycle %d",
				h.Title, hist.CycleNumber, h.CurrentCycle)
		}
	}

	if h.WaitingForNextCycle {
		found := false
		for _, hist := range d.Histories {
			if hist.CycleNumber == h.CurrentCycle {
				found = true
				break
			}
		}
		if !found {
			result.add(ConflictCycleCounter, h.ID, "Habit %q is waiting for its next cycle but cycle %d was never frozen",
				h.Title, h.CurrentCycle)
		}
	}

	return result
}
