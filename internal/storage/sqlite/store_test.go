package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitcycle/internal/models"
	"github.com/julianstephens/habitcycle/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testHabit(id string) models.Habit {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return models.Habit{
		ID:           id,
		Title:        "Read",
		StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:       true,
		CurrentCycle: 1,
		ColorHex:     "FF6B4A",
		Emoji:        "📚",
		MiniItems:    []string{"1 page"},
		MoreItems:    []string{"10 pages", "notes"},
		MaxItems:     []string{"1 chapter"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestInitWritesDefaultSettings(t *testing.T) {
	store := setupTestStore(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings != models.DefaultSettings() {
		t.Errorf("expected default settings, got %+v", settings)
	}

	settings.Timezone = "Europe/Berlin"
	settings.AutoBackup = false
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	// Re-running Init must not clobber saved settings
	if err := store.Init(); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	got, _ := store.GetSettings()
	if got.Timezone != "Europe/Berlin" || got.AutoBackup {
		t.Errorf("settings were reset by Init: %+v", got)
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Error("expected Load to fail before init")
	}
}

func TestLoadExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	if err := store.AddHabit(testHabit("h1")); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.GetHabit("h1"); err != nil {
		t.Errorf("habit missing after reopen: %v", err)
	}

	current, latest, err := reopened.SchemaStatus()
	if err != nil {
		t.Fatalf("SchemaStatus failed: %v", err)
	}
	if current != latest || current < 1 {
		t.Errorf("expected schema up to date, got current=%d latest=%d", current, latest)
	}
}

func TestHabitCRUD(t *testing.T) {
	store := setupTestStore(t)
	habit := testHabit("h1")

	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	got, err := store.GetHabit("h1")
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if got.Title != "Read" || !got.Active || got.CurrentCycle != 1 {
		t.Errorf("unexpected habit: %+v", got)
	}
	if got.StartDate.Format("2006-01-02") != "2025-01-01" {
		t.Errorf("unexpected start date %v", got.StartDate)
	}
	if len(got.MoreItems) != 2 || got.MoreItems[1] != "notes" {
		t.Errorf("items not round-tripped: %v", got.MoreItems)
	}

	got.Title = "Read more"
	got.WaitingForNextCycle = true
	got.CompletedCycles = 2
	if err := store.UpdateHabit(got); err != nil {
		t.Fatalf("UpdateHabit failed: %v", err)
	}
	updated, _ := store.GetHabit("h1")
	if updated.Title != "Read more" || !updated.WaitingForNextCycle || updated.CompletedCycles != 2 {
		t.Errorf("update not persisted: %+v", updated)
	}

	inactive := testHabit("h2")
	inactive.Active = false
	inactive.CreatedAt = inactive.CreatedAt.Add(time.Hour)
	if err := store.AddHabit(inactive); err != nil {
		t.Fatal(err)
	}

	all, err := store.GetAllHabits(false)
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 habits, got %d", len(all))
	}
	active, _ := store.GetAllHabits(true)
	if len(active) != 1 || active[0].ID != "h1" {
		t.Errorf("expected only h1 active, got %+v", active)
	}
}

func TestMissingRowsReturnErrNotFound(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.GetHabit("nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetHabit: expected ErrNotFound, got %v", err)
	}
	if err := store.UpdateHabit(testHabit("nope")); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateHabit: expected ErrNotFound, got %v", err)
	}
	if err := store.DeleteHabit("nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteHabit: expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetRecord("nope", "2025-01-01"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetRecord: expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetCycleHistory("nope", 1); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetCycleHistory: expected ErrNotFound, got %v", err)
	}
}

func TestUpsertRecordKeepsOneRowPerDay(t *testing.T) {
	store := setupTestStore(t)
	if err := store.AddHabit(testHabit("h1")); err != nil {
		t.Fatal(err)
	}

	memo := "felt good"
	first, err := store.UpsertRecord(models.DailyRecord{
		HabitID:       "h1",
		Day:           "2025-01-03",
		Level:         models.LevelMini,
		Memo:          &memo,
		SelectedItems: []string{"1 page"},
	})
	if err != nil {
		t.Fatalf("UpsertRecord failed: %v", err)
	}
	if first.ID == "" {
		t.Error("expected generated record ID")
	}

	second, err := store.UpsertRecord(models.DailyRecord{
		HabitID:       "h1",
		Day:           "2025-01-03",
		Level:         models.LevelMax,
		SelectedItems: []string{"1 chapter"},
	})
	if err != nil {
		t.Fatalf("second UpsertRecord failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected record ID %s to survive update, got %s", first.ID, second.ID)
	}
	if second.Level != models.LevelMax || second.Memo != nil {
		t.Errorf("expected MAX without memo, got %+v", second)
	}

	records, err := store.GetRecordsForHabit("h1")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("expected exactly one record for the day, got %d", len(records))
	}
}

func TestGetRecordsInRange(t *testing.T) {
	store := setupTestStore(t)
	if err := store.AddHabit(testHabit("h1")); err != nil {
		t.Fatal(err)
	}
	for _, day := range []string{"2025-01-01", "2025-01-10", "2025-01-20", "2025-01-21"} {
		if _, err := store.UpsertRecord(models.DailyRecord{HabitID: "h1", Day: day, Level: models.LevelMore}); err != nil {
			t.Fatal(err)
		}
	}

	records, err := store.GetRecordsInRange("h1", "2025-01-01", "2025-01-20")
	if err != nil {
		t.Fatalf("GetRecordsInRange failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records in range, got %d", len(records))
	}
	if records[0].Day != "2025-01-01" || records[2].Day != "2025-01-20" {
		t.Errorf("records not ordered by day: %v, %v", records[0].Day, records[2].Day)
	}
}

func TestCycleHistoriesAreFrozen(t *testing.T) {
	store := setupTestStore(t)
	if err := store.AddHabit(testHabit("h1")); err != nil {
		t.Fatal(err)
	}

	history := models.CycleHistory{
		HabitID:       "h1",
		CycleNumber:   1,
		StartDay:      "2025-01-01",
		EndDay:        "2025-01-20",
		CompletedDays: 16,
		Successful:    true,
		MiniCount:     10,
		MoreCount:     4,
		MaxCount:      2,
		SkipCount:     1,
	}
	if err := store.AddCycleHistory(history); err != nil {
		t.Fatalf("AddCycleHistory failed: %v", err)
	}

	overwrite := history
	overwrite.CompletedDays = 3
	overwrite.Successful = false
	if err := store.AddCycleHistory(overwrite); err != nil {
		t.Fatalf("duplicate AddCycleHistory failed: %v", err)
	}

	got, err := store.GetCycleHistory("h1", 1)
	if err != nil {
		t.Fatalf("GetCycleHistory failed: %v", err)
	}
	if got.CompletedDays != 16 || !got.Successful || got.SkipCount != 1 {
		t.Errorf("history was modified: %+v", got)
	}

	all, _ := store.GetCycleHistories("h1")
	if len(all) != 1 {
		t.Errorf("expected one history, got %d", len(all))
	}
}

func TestDeleteHabitCascades(t *testing.T) {
	store := setupTestStore(t)
	for _, id := range []string{"h1", "h2"} {
		if err := store.AddHabit(testHabit(id)); err != nil {
			t.Fatal(err)
		}
		if _, err := store.UpsertRecord(models.DailyRecord{HabitID: id, Day: "2025-01-02", Level: models.LevelMini}); err != nil {
			t.Fatal(err)
		}
		if err := store.AddCycleHistory(models.CycleHistory{HabitID: id, CycleNumber: 1, StartDay: "2025-01-01", EndDay: "2025-01-20"}); err != nil {
			t.Fatal(err)
		}
		if err := store.SaveReminder(models.Reminder{HabitID: id, TimeOfDay: "08:00"}); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.DeleteHabit("h1"); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}

	if records, _ := store.GetRecordsForHabit("h1"); len(records) != 0 {
		t.Errorf("expected records of h1 removed, got %d", len(records))
	}
	if histories, _ := store.GetCycleHistories("h1"); len(histories) != 0 {
		t.Errorf("expected histories of h1 removed, got %d", len(histories))
	}
	reminders, _ := store.GetReminders()
	if len(reminders) != 1 || reminders[0].HabitID != "h2" {
		t.Errorf("expected only h2 reminder left, got %+v", reminders)
	}
	if records, _ := store.GetRecordsForHabit("h2"); len(records) != 1 {
		t.Errorf("expected h2 records untouched, got %d", len(records))
	}
}

func TestInTxRollsBack(t *testing.T) {
	store := setupTestStore(t)
	habit := testHabit("h1")
	if err := store.AddHabit(habit); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := store.InTx(func(r storage.Repo) error {
		if err := r.AddCycleHistory(models.CycleHistory{HabitID: "h1", CycleNumber: 1, StartDay: "2025-01-01", EndDay: "2025-01-20"}); err != nil {
			return err
		}
		h := habit
		h.WaitingForNextCycle = true
		if err := r.UpdateHabit(h); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}

	if _, err := store.GetCycleHistory("h1", 1); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("history should have been rolled back, got %v", err)
	}
	got, _ := store.GetHabit("h1")
	if got.WaitingForNextCycle {
		t.Error("habit update should have been rolled back")
	}
}

func TestInTxCommits(t *testing.T) {
	store := setupTestStore(t)
	if err := store.AddHabit(testHabit("h1")); err != nil {
		t.Fatal(err)
	}

	err := store.InTx(func(r storage.Repo) error {
		_, err := r.UpsertRecord(models.DailyRecord{HabitID: "h1", Day: "2025-01-05", Level: models.LevelSkip})
		return err
	})
	if err != nil {
		t.Fatalf("InTx failed: %v", err)
	}

	rec, err := store.GetRecord("h1", "2025-01-05")
	if err != nil {
		t.Fatalf("record not committed: %v", err)
	}
	if rec.Level != models.LevelSkip {
		t.Errorf("expected SKIP, got %s", rec.Level)
	}
}

func TestReminders(t *testing.T) {
	store := setupTestStore(t)
	if err := store.AddHabit(testHabit("h1")); err != nil {
		t.Fatal(err)
	}

	if err := store.SaveReminder(models.Reminder{HabitID: "h1", TimeOfDay: "08:00"}); err != nil {
		t.Fatalf("SaveReminder failed: %v", err)
	}
	if err := store.MarkReminderSent("h1", "2025-01-02"); err != nil {
		t.Fatalf("MarkReminderSent failed: %v", err)
	}

	// Same time keeps the sent marker
	if err := store.SaveReminder(models.Reminder{HabitID: "h1", TimeOfDay: "08:00"}); err != nil {
		t.Fatal(err)
	}
	reminders, _ := store.GetReminders()
	if len(reminders) != 1 || reminders[0].LastSentDay != "2025-01-02" {
		t.Errorf("expected sent marker kept, got %+v", reminders)
	}

	// A new time clears it
	if err := store.SaveReminder(models.Reminder{HabitID: "h1", TimeOfDay: "19:30"}); err != nil {
		t.Fatal(err)
	}
	reminders, _ = store.GetReminders()
	if reminders[0].TimeOfDay != "19:30" || reminders[0].LastSentDay != "" {
		t.Errorf("expected updated time with cleared marker, got %+v", reminders[0])
	}

	if err := store.DeleteReminder("h1"); err != nil {
		t.Fatalf("DeleteReminder failed: %v", err)
	}
	if err := store.DeleteReminder("h1"); err != nil {
		t.Errorf("deleting a missing reminder should succeed, got %v", err)
	}
	if err := store.MarkReminderSent("h1", "2025-01-03"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound marking a missing reminder, got %v", err)
	}
}
