package notifier

import (
	"fmt"

	"github.com/julianstephens/habitcycle/internal/models"
	"github.com/julianstephens/habitcycle/internal/storage"
	"github.com/julianstephens/habitcycle/internal/utils"
)

// Gateway schedules and cancels a habit's daily reminder.
type Gateway interface {
	Schedule(habitID, timeOfDay string) error
	Cancel(habitID string) error
}

// ReminderScheduler persists daily reminders for Dispatch to deliver.
type ReminderScheduler struct {
	store storage.Repo
}

func NewReminderScheduler(store storage.Repo) *ReminderScheduler {
	return &ReminderScheduler{store: store}
}

func (s *ReminderScheduler) Schedule(habitID, timeOfDay string) error {
	if !utils.ValidateTimeFormat(timeOfDay) {
		return fmt.Errorf("invalid reminder time %q (expected HH:MM)", timeOfDay)
	}
	return s.store.SaveReminder(models.Reminder{HabitID: habitID, TimeOfDay: timeOfDay})
}

// Cancel removes the habit's reminder. Cancelling an unscheduled habit is a no-op.
func (s *ReminderScheduler) Cancel(habitID string) error {
	return s.store.DeleteReminder(habitID)
}
