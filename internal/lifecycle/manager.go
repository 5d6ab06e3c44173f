// Package lifecycle owns every mutation of habits and their records: cycle
// closing, starting the next cycle, check-ins and habit CRUD. Each mutation
// runs in one storage transaction.
package lifecycle

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitcycle/internal/constants"
	"github.com/julianstephens/habitcycle/internal/cycle"
	"github.com/julianstephens/habitcycle/internal/logger"
	"github.com/julianstephens/habitcycle/internal/models"
	"github.com/julianstephens/habitcycle/internal/notifier"
	"github.com/julianstephens/habitcycle/internal/stats"
	"github.com/julianstephens/habitcycle/internal/storage"
	"github.com/julianstephens/habitcycle/internal/utils"
	"github.com/julianstephens/habitcycle/internal/validation"
)

var (
	// ErrNotWaiting is returned when starting a next cycle for a habit whose current cycle is still open.
	ErrNotWaiting = errors.New("habit is not waiting for its next cycle")
	// ErrStartDateLocked is returned when moving the start date of a habit that already has frozen cycles.
	ErrStartDateLocked = errors.New("start date cannot change once a cycle has been closed")
	// ErrFutureDay is returned for check-ins dated after today.
	ErrFutureDay = errors.New("cannot check in for a future day")
)

// Manager applies the habit state machine on top of a storage provider.
type Manager struct {
	store   storage.Provider
	gateway notifier.Gateway

	hooks    sync.WaitGroup
	hookMu   sync.Mutex
	lastHook chan struct{}
}

// New creates a Manager. gateway may be nil when reminders are not wired.
func New(store storage.Provider, gateway notifier.Gateway) *Manager {
	return &Manager{store: store, gateway: gateway}
}

// CheckReport is the outcome of a CheckAll pass.
type CheckReport struct {
	Closed []models.CycleHistory
	Failed map[string]error
}

// CheckAndUpdateCycleCompletion closes the habit's open cycle once today is
// past its last day: it freezes a CycleHistory, counts a success and marks
// the habit as waiting. It returns the frozen history, or nil when nothing
// changed. Calling it again while waiting is a no-op.
func (m *Manager) CheckAndUpdateCycleCompletion(habitID string, now time.Time) (*models.CycleHistory, error) {
	var closed *models.CycleHistory

	err := m.store.InTx(func(r storage.Repo) error {
		habit, err := r.GetHabit(habitID)
		if err != nil {
			return err
		}
		if habit.WaitingForNextCycle {
			return nil
		}

		first, last := cycle.Window(habit.StartDate, habit.CurrentCycle)
		if !cycle.IsAfter(now, last) {
			return nil
		}

		records, err := r.GetRecordsInRange(habit.ID, first.Format(constants.DateFormat), last.Format(constants.DateFormat))
		if err != nil {
			return fmt.Errorf("failed to read cycle records: %w", err)
		}
		b := stats.CountSlots(cycle.SlotsFrom(first, records))

		history := models.CycleHistory{
			ID:            uuid.New().String(),
			HabitID:       habit.ID,
			CycleNumber:   habit.CurrentCycle,
			StartDay:      first.Format(constants.DateFormat),
			EndDay:        last.Format(constants.DateFormat),
			CompletedDays: b.Completed(),
			Successful:    b.Completed() >= cycle.SuccessThreshold,
			MiniCount:     b.Mini,
			MoreCount:     b.More,
			MaxCount:      b.Max,
			SkipCount:     b.Skip,
			CreatedAt:     now,
		}
		if err := r.AddCycleHistory(history); err != nil {
			return err
		}
		// An earlier freeze of the same cycle wins
		stored, err := r.GetCycleHistory(habit.ID, habit.CurrentCycle)
		if err != nil {
			return err
		}

		if stored.Successful {
			habit.CompletedCycles++
		}
		habit.WaitingForNextCycle = true
		habit.UpdatedAt = now
		if err := r.UpdateHabit(habit); err != nil {
			return err
		}

		closed = &stored
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cycle check for habit %s: %w", habitID, err)
	}

	if closed != nil {
		logger.Info("cycle closed", "habit", habitID, "cycle", closed.CycleNumber,
			"completed", closed.CompletedDays, "successful", closed.Successful)
	}
	return closed, nil
}

// CheckAll runs the cycle check for every active habit. A failing habit is
// logged and reported without stopping the others.
func (m *Manager) CheckAll(now time.Time) (CheckReport, error) {
	report := CheckReport{Failed: map[string]error{}}

	habits, err := m.store.GetAllHabits(true)
	if err != nil {
		return report, fmt.Errorf("failed to list habits: %w", err)
	}

	for _, h := range habits {
		closed, err := m.CheckAndUpdateCycleCompletion(h.ID, now)
		if err != nil {
			logger.Error("cycle check failed", "habit", h.ID, "error", err)
			report.Failed[h.ID] = err
			continue
		}
		if closed != nil {
			report.Closed = append(report.Closed, *closed)
		}
	}
	return report, nil
}

// StartNextCycle moves a waiting habit into its next cycle. The new cycle is
// the window containing now, so windows that passed while waiting are skipped.
func (m *Manager) StartNextCycle(habitID string, now time.Time) (models.Habit, error) {
	var habit models.Habit
	err := m.store.InTx(func(r storage.Repo) error {
		var err error
		habit, err = r.GetHabit(habitID)
		if err != nil {
			return err
		}
		if !habit.WaitingForNextCycle {
			return ErrNotWaiting
		}

		habit.CurrentCycle = max(habit.CurrentCycle+1, cycle.BucketIndex(habit.StartDate, now)+1)
		habit.WaitingForNextCycle = false
		habit.UpdatedAt = now
		return r.UpdateHabit(habit)
	})
	if err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

// CompleteHabitWithItems records the day's check-in, replacing any earlier
// check-in for the same day. Items must belong to the level's goal list.
func (m *Manager) CompleteHabitWithItems(habitID string, level models.CompletionLevel, items []string, memo *string, day string, now time.Time) (models.DailyRecord, error) {
	return m.checkIn(checkInRequest{habitID: habitID, level: level, items: items, memo: memo, day: day}, now)
}

// UpdateRecord sets only the level of a day's check-in. Selected items
// survive when the level is unchanged; a nil memo keeps the existing memo.
func (m *Manager) UpdateRecord(habitID string, level models.CompletionLevel, memo *string, day string, now time.Time) (models.DailyRecord, error) {
	return m.checkIn(checkInRequest{habitID: habitID, level: level, memo: memo, day: day, keepItems: true, keepMemo: true}, now)
}

// UpdateRecordItems replaces the level and items of a day's check-in. A nil
// memo keeps the existing memo.
func (m *Manager) UpdateRecordItems(habitID string, level models.CompletionLevel, items []string, memo *string, day string, now time.Time) (models.DailyRecord, error) {
	return m.checkIn(checkInRequest{habitID: habitID, level: level, items: items, memo: memo, day: day, keepMemo: true}, now)
}

type checkInRequest struct {
	habitID string
	level   models.CompletionLevel
	items   []string
	memo    *string
	day     string

	// keepItems carries the stored items over when the level is unchanged.
	keepItems bool
	// keepMemo carries the stored memo over when memo is nil.
	keepMemo bool
}

// checkIn upserts the day's record. Reading the existing record and
// writing the new one share a transaction.
func (m *Manager) checkIn(req checkInRequest, now time.Time) (models.DailyRecord, error) {
	if !utils.ValidateDateFormat(req.day) {
		return models.DailyRecord{}, fmt.Errorf("invalid day %q (expected YYYY-MM-DD)", req.day)
	}
	if req.day > cycle.Today(now) {
		return models.DailyRecord{}, ErrFutureDay
	}

	var rec models.DailyRecord
	err := m.store.InTx(func(r storage.Repo) error {
		habit, err := r.GetHabit(req.habitID)
		if err != nil {
			return err
		}

		items, memo := req.items, req.memo
		if req.keepItems || req.keepMemo {
			existing, err := r.GetRecord(habit.ID, req.day)
			switch {
			case err == nil:
				if req.keepItems && existing.Level == req.level {
					items = existing.SelectedItems
				}
				if req.keepMemo && memo == nil {
					memo = existing.Memo
				}
			case !errors.Is(err, storage.ErrNotFound):
				return err
			}
		}
		if memo != nil && strings.TrimSpace(*memo) == "" {
			memo = nil
		}
		if err := validation.ValidateSelectedItems(habit, req.level, items); err != nil {
			return err
		}

		rec, err = r.UpsertRecord(models.DailyRecord{
			ID:            uuid.New().String(),
			HabitID:       habit.ID,
			Day:           req.day,
			Level:         req.level,
			Memo:          memo,
			SelectedItems: items,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return err
		}

		habit.UpdatedAt = now
		return r.UpdateHabit(habit)
	})
	if err != nil {
		return models.DailyRecord{}, err
	}
	return rec, nil
}

// TodayRecord returns the habit's record for day and whether one exists.
func (m *Manager) TodayRecord(habitID, day string) (models.DailyRecord, bool, error) {
	rec, err := m.store.GetRecord(habitID, day)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.DailyRecord{}, false, nil
		}
		return models.DailyRecord{}, false, err
	}
	return rec, true, nil
}

// AddHabit stores a new habit. A zero StartDate means today. The habit
// starts in the cycle containing now.
func (m *Manager) AddHabit(h models.Habit, now time.Time) (models.Habit, error) {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.StartDate.IsZero() {
		h.StartDate = now
	}
	h.StartDate = dateOnly(h.StartDate)
	if h.ColorHex == "" {
		h.ColorHex = constants.DefaultColorHex
	}
	h.ColorHex = strings.TrimPrefix(strings.ToUpper(h.ColorHex), "#")
	if h.Emoji == "" {
		h.Emoji = constants.DefaultEmoji
	}
	h.Title = strings.TrimSpace(h.Title)
	h.Active = true
	h.CurrentCycle = cycle.BucketIndex(h.StartDate, now) + 1
	h.CompletedCycles = 0
	h.WaitingForNextCycle = false
	h.CreatedAt = now
	h.UpdatedAt = now

	if err := validation.ValidateHabit(h); err != nil {
		return models.Habit{}, err
	}
	if err := m.store.AddHabit(h); err != nil {
		return models.Habit{}, err
	}

	if h.HasReminder() {
		m.schedule(h.ID, h.ReminderTime)
	}
	return h, nil
}

// UpdateHabit saves the user-editable fields of h. Cycle bookkeeping is kept
// from the stored habit unless the start date moves, which is only allowed
// before the first cycle has been frozen.
func (m *Manager) UpdateHabit(h models.Habit, now time.Time) (models.Habit, error) {
	var updated models.Habit
	err := m.store.InTx(func(r storage.Repo) error {
		current, err := r.GetHabit(h.ID)
		if err != nil {
			return err
		}

		updated = current
		updated.Title = strings.TrimSpace(h.Title)
		updated.Active = h.Active
		updated.ColorHex = strings.TrimPrefix(strings.ToUpper(h.ColorHex), "#")
		updated.Emoji = h.Emoji
		updated.MiniItems = h.MiniItems
		updated.MoreItems = h.MoreItems
		updated.MaxItems = h.MaxItems
		updated.ReminderEnabled = h.ReminderEnabled
		updated.ReminderTime = h.ReminderTime
		updated.UpdatedAt = now

		if !h.StartDate.IsZero() && cycle.DaysBetween(current.StartDate, h.StartDate) != 0 {
			histories, err := r.GetCycleHistories(h.ID)
			if err != nil {
				return err
			}
			if len(histories) > 0 {
				return ErrStartDateLocked
			}
			updated.StartDate = dateOnly(h.StartDate)
			updated.CurrentCycle = cycle.BucketIndex(updated.StartDate, now) + 1
			updated.WaitingForNextCycle = false
		}

		if err := validation.ValidateHabit(updated); err != nil {
			return err
		}
		return r.UpdateHabit(updated)
	})
	if err != nil {
		return models.Habit{}, err
	}

	if updated.HasReminder() {
		m.schedule(updated.ID, updated.ReminderTime)
	} else {
		m.cancel(updated.ID)
	}
	return updated, nil
}

// DeleteHabit removes the habit with all of its records, histories and reminder.
func (m *Manager) DeleteHabit(habitID string) error {
	if err := m.store.DeleteHabit(habitID); err != nil {
		return err
	}
	m.cancel(habitID)
	return nil
}

// ListHabits returns stored habits ordered by creation.
func (m *Manager) ListHabits(activeOnly bool) ([]models.Habit, error) {
	return m.store.GetAllHabits(activeOnly)
}

// GetHabit returns a habit by ID, case-insensitive title or ID prefix.
// A title match wins over ID prefixes.
func (m *Manager) GetHabit(ref string) (models.Habit, error) {
	if strings.TrimSpace(ref) == "" {
		return models.Habit{}, errors.New("habit reference cannot be empty")
	}
	h, err := m.store.GetHabit(ref)
	if err == nil || !errors.Is(err, storage.ErrNotFound) {
		return h, err
	}

	habits, err := m.store.GetAllHabits(false)
	if err != nil {
		return models.Habit{}, err
	}
	var byTitle, byPrefix []models.Habit
	for _, h := range habits {
		if strings.EqualFold(h.Title, ref) {
			byTitle = append(byTitle, h)
		} else if strings.HasPrefix(h.ID, strings.ToLower(ref)) {
			byPrefix = append(byPrefix, h)
		}
	}
	matches := byTitle
	if len(matches) == 0 {
		matches = byPrefix
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("habit %q: %w", ref, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return models.Habit{}, fmt.Errorf("habit %q is ambiguous (%d matches)", ref, len(matches))
}

// GetCycleHistory returns the frozen history of cycle n.
func (m *Manager) GetCycleHistory(habitID string, n int) (models.CycleHistory, error) {
	return m.store.GetCycleHistory(habitID, n)
}

// Snapshot reads a habit and its children in one transaction.
func (m *Manager) Snapshot(habitID string) (stats.Snapshot, error) {
	var s stats.Snapshot
	err := m.store.InTx(func(r storage.Repo) error {
		var err error
		if s.Habit, err = r.GetHabit(habitID); err != nil {
			return err
		}
		if s.Records, err = r.GetRecordsForHabit(habitID); err != nil {
			return err
		}
		s.Histories, err = r.GetCycleHistories(habitID)
		return err
	})
	if err != nil {
		return stats.Snapshot{}, err
	}
	return s, nil
}

// Snapshots returns a snapshot of every habit, sorted by title.
func (m *Manager) Snapshots(activeOnly bool) ([]stats.Snapshot, error) {
	habits, err := m.store.GetAllHabits(activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]stats.Snapshot, 0, len(habits))
	for _, h := range habits {
		s, err := m.Snapshot(h.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Habit.Title) < strings.ToLower(out[j].Habit.Title)
	})
	return out, nil
}

// Wait blocks until every queued reminder hook has finished.
func (m *Manager) Wait() {
	m.hooks.Wait()
}

func (m *Manager) schedule(habitID, timeOfDay string) {
	m.dispatch("schedule", habitID, func(g notifier.Gateway) error {
		return g.Schedule(habitID, timeOfDay)
	})
}

func (m *Manager) cancel(habitID string) {
	m.dispatch("cancel", habitID, func(g notifier.Gateway) error {
		return g.Cancel(habitID)
	})
}

// dispatch runs a gateway hook in the background. Hooks run one after
// another in submission order; failures are only logged.
func (m *Manager) dispatch(op, habitID string, fn func(notifier.Gateway) error) {
	if m.gateway == nil {
		return
	}

	m.hookMu.Lock()
	prev := m.lastHook
	done := make(chan struct{})
	m.lastHook = done
	m.hookMu.Unlock()

	m.hooks.Add(1)
	go func() {
		defer m.hooks.Done()
		defer close(done)
		if prev != nil {
			<-prev
		}
		if err := fn(m.gateway); err != nil {
			logger.Warn("reminder hook failed", "op", op, "habit", habitID, "error", err)
		}
	}()
}

func dateOnly(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
