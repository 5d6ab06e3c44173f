package storage

import (
	"fmt"

	"github.com/julianstephens/habitcycle/internal/models"
)

// SaveReminder creates or updates the habit's reminder. Moving the reminder
// to another time of day clears the sent marker.
func (r *SQLRepo) SaveReminder(rem models.Reminder) error {
	_, err := r.exec(`INSERT INTO reminders (habit_id, time_of_day, last_sent_day)
		VALUES (?, ?, ?)
		ON CONFLICT (habit_id) DO UPDATE SET
			last_sent_day = CASE WHEN reminders.time_of_day = excluded.time_of_day
				THEN reminders.last_sent_day ELSE '' END,
			time_of_day = excluded.time_of_day`,
		rem.HabitID, rem.TimeOfDay, rem.LastSentDay)
	if err != nil {
		return fmt.Errorf("failed to save reminder: %w", err)
	}
	return nil
}

// DeleteReminder removes the habit's reminder. Deleting a missing reminder is not an error.
func (r *SQLRepo) DeleteReminder(habitID string) error {
	if _, err := r.exec(`DELETE FROM reminders WHERE habit_id = ?`, habitID); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return nil
}

func (r *SQLRepo) GetReminders() ([]models.Reminder, error) {
	rows, err := r.query(`SELECT habit_id, time_of_day, last_sent_day FROM reminders ORDER BY time_of_day, habit_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := []models.Reminder{}
	for rows.Next() {
		var rem models.Reminder
		if err := rows.Scan(&rem.HabitID, &rem.TimeOfDay, &rem.LastSentDay); err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

func (r *SQLRepo) MarkReminderSent(habitID, day string) error {
	res, err := r.exec(`UPDATE reminders SET last_sent_day = ? WHERE habit_id = ?`, day, habitID)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("reminder for habit %s: %w", habitID, ErrNotFound)
	}
	return nil
}
