package notifier

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitcycle/internal/models"
	"github.com/julianstephens/habitcycle/internal/storage/sqlite"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Notify(text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func addHabit(t *testing.T, store *sqlite.Store, id string, reminder string) models.Habit {
	t.Helper()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	h := models.Habit{
		ID:              id,
		Title:           "Stretch " + id,
		Emoji:           "🧘",
		StartDate:       now,
		Active:          true,
		CurrentCycle:    1,
		ReminderEnabled: reminder != "",
		ReminderTime:    reminder,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := store.AddHabit(h); err != nil {
		t.Fatal(err)
	}
	if reminder != "" {
		if err := NewReminderScheduler(store).Schedule(id, reminder); err != nil {
			t.Fatal(err)
		}
	}
	return h
}

func TestReminderScheduler(t *testing.T) {
	store := setupStore(t)
	addHabit(t, store, "h1", "")
	s := NewReminderScheduler(store)

	if err := s.Schedule("h1", "7pm"); err == nil {
		t.Error("expected error for malformed time")
	}
	if err := s.Schedule("h1", "19:00"); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	reminders, _ := store.GetReminders()
	if len(reminders) != 1 || reminders[0].TimeOfDay != "19:00" {
		t.Errorf("unexpected reminders %+v", reminders)
	}

	if err := s.Cancel("h1"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if err := s.Cancel("h1"); err != nil {
		t.Errorf("second Cancel should be a no-op, got %v", err)
	}
}

func TestDispatchSendsDueRemindersOnce(t *testing.T) {
	store := setupStore(t)
	addHabit(t, store, "due", "08:00")
	addHabit(t, store, "later", "09:00")
	addHabit(t, store, "stale", "07:00")

	sender := &fakeSender{}
	d := &Dispatcher{Store: store, Sender: sender}
	now := time.Date(2025, 1, 5, 8, 5, 0, 0, time.UTC)

	res, err := d.Dispatch(now)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if len(res.Sent) != 1 || res.Sent[0] != "due" {
		t.Fatalf("expected only the due reminder sent, got %+v", res.Sent)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(sender.sent))
	}

	res, err = d.Dispatch(now.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Sent) != 0 {
		t.Errorf("reminder sent twice on the same day: %+v", res.Sent)
	}

	// Next day it fires again
	res, _ = d.Dispatch(now.AddDate(0, 0, 1))
	if len(res.Sent) != 1 {
		t.Errorf("expected reminder the next day, got %+v", res.Sent)
	}
}

func TestDispatchSkipsCheckedInAndWaitingHabits(t *testing.T) {
	store := setupStore(t)
	addHabit(t, store, "done", "08:00")
	waiting := addHabit(t, store, "waiting", "08:00")

	if _, err := store.UpsertRecord(models.DailyRecord{HabitID: "done", Day: "2025-01-05", Level: models.LevelMini}); err != nil {
		t.Fatal(err)
	}
	waiting.WaitingForNextCycle = true
	if err := store.UpdateHabit(waiting); err != nil {
		t.Fatal(err)
	}

	sender := &fakeSender{}
	d := &Dispatcher{Store: store, Sender: sender}
	res, err := d.Dispatch(time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Sent) != 0 || len(sender.sent) != 0 {
		t.Errorf("expected nothing sent, got %+v", res.Sent)
	}
}

func TestDispatchDisabledAndDryRun(t *testing.T) {
	store := setupStore(t)
	addHabit(t, store, "h1", "08:00")
	now := time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC)

	settings, _ := store.GetSettings()
	settings.NotificationsEnabled = false
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}
	sender := &fakeSender{}
	res, _ := (&Dispatcher{Store: store, Sender: sender}).Dispatch(now)
	if len(res.Sent) != 0 {
		t.Errorf("expected nothing sent while disabled, got %+v", res.Sent)
	}

	settings.NotificationsEnabled = true
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}
	dry := &Dispatcher{Store: store, Sender: sender, DryRun: true}
	for i := 0; i < 2; i++ {
		if _, err := dry.Dispatch(now); err != nil {
			t.Fatal(err)
		}
	}
	if len(sender.sent) != 2 {
		t.Errorf("dry run should not mark reminders sent, got %d sends", len(sender.sent))
	}
}

func TestDispatchCollectsFailures(t *testing.T) {
	store := setupStore(t)
	addHabit(t, store, "h1", "08:00")

	sender := &fakeSender{err: errors.New("tray offline")}
	res, err := (&Dispatcher{Store: store, Sender: sender}).Dispatch(time.Date(2025, 1, 5, 8, 1, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Dispatch should not fail as a whole: %v", err)
	}
	if res.Failed["h1"] == nil {
		t.Error("expected failure recorded for h1")
	}

	reminders, _ := store.GetReminders()
	if reminders[0].LastSentDay != "" {
		t.Error("failed reminder must not be marked sent")
	}
}
