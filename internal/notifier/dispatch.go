package notifier

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitcycle/internal/constants"
	"github.com/julianstephens/habitcycle/internal/logger"
	"github.com/julianstephens/habitcycle/internal/storage"
	"github.com/julianstephens/habitcycle/internal/utils"
)

// Dispatcher delivers due reminders. It is meant to run once a minute from cron.
type Dispatcher struct {
	Store  storage.Repo
	Sender Sender
	// DryRun sends through Sender but leaves reminders unmarked.
	DryRun bool
}

// DispatchResult lists what one Dispatch pass did, keyed by habit ID.
type DispatchResult struct {
	Sent   []string
	Failed map[string]error
}

// Dispatch sends every reminder whose time has arrived today, is no older
// than the grace period, has not been sent today and whose habit still
// needs a check-in today.
func (d *Dispatcher) Dispatch(now time.Time) (DispatchResult, error) {
	result := DispatchResult{Failed: map[string]error{}}

	settings, err := d.Store.GetSettings()
	if err != nil {
		return result, fmt.Errorf("failed to get settings: %w", err)
	}
	if !settings.NotificationsEnabled {
		return result, nil
	}

	reminders, err := d.Store.GetReminders()
	if err != nil {
		return result, fmt.Errorf("failed to get reminders: %w", err)
	}

	today := now.Format(constants.DateFormat)
	grace := time.Duration(settings.NotificationGracePeriodMin) * time.Minute

	for _, rem := range reminders {
		if rem.LastSentDay == today {
			continue
		}

		trigger, err := utils.ReminderTrigger(today, rem.TimeOfDay, now.Location())
		if err != nil {
			logger.Warn("skipping reminder with bad time", "habit", rem.HabitID, "time", rem.TimeOfDay, "error", err)
			continue
		}
		if now.Before(trigger) || now.Sub(trigger) > grace {
			continue
		}

		habit, err := d.Store.GetHabit(rem.HabitID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				result.Failed[rem.HabitID] = err
			}
			continue
		}
		if !habit.Active || habit.WaitingForNextCycle {
			continue
		}

		if rec, err := d.Store.GetRecord(habit.ID, today); err == nil && rec.Level.Completed() {
			continue
		}

		msg := fmt.Sprintf("%s %s %s", constants.ReminderTitle, habit.Emoji, habit.Title)
		if err := d.Sender.Notify(msg); err != nil {
			logger.Warn("failed to send reminder", "habit", habit.ID, "error", err)
			result.Failed[habit.ID] = err
			continue
		}

		if !d.DryRun {
			if err := d.Store.MarkReminderSent(habit.ID, today); err != nil {
				result.Failed[habit.ID] = err
				continue
			}
		}
		result.Sent = append(result.Sent, habit.ID)
	}

	return result, nil
}
