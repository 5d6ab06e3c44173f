package storage

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitcycle/internal/constants"
	"github.com/julianstephens/habitcycle/internal/models"
)

const habitColumns = `id, title, start_date, active, current_cycle, completed_cycles,
	color_hex, emoji, mini_items, more_items, max_items, reminder_enabled,
	reminder_time, waiting_for_next_cycle, created_at, updated_at`

func (r *SQLRepo) AddHabit(habit models.Habit) error {
	args, err := habitArgs(habit)
	if err != nil {
		return err
	}
	_, err = r.exec(`INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	return nil
}

func (r *SQLRepo) GetHabit(id string) (models.Habit, error) {
	row := r.queryRow(`SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, notFound(err, "habit %s", id)
	}
	return h, nil
}

func (r *SQLRepo) GetAllHabits(activeOnly bool) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits`
	var args []any
	if activeOnly {
		query += ` WHERE active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (r *SQLRepo) UpdateHabit(habit models.Habit) error {
	args, err := habitArgs(habit)
	if err != nil {
		return err
	}
	// id first in habitArgs; move it to the WHERE clause
	args = append(args[1:], args[0])
	res, err := r.exec(`UPDATE habits SET
		title = ?, start_date = ?, active = ?, current_cycle = ?, completed_cycles = ?,
		color_hex = ?, emoji = ?, mini_items = ?, more_items = ?, max_items = ?,
		reminder_enabled = ?, reminder_time = ?, waiting_for_next_cycle = ?,
		created_at = ?, updated_at = ?
		WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("habit %s: %w", habit.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLRepo) DeleteHabit(id string) error {
	for _, table := range []string{"reminders", "cycle_histories", "daily_records"} {
		if _, err := r.exec(`DELETE FROM `+table+` WHERE habit_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	res, err := r.exec(`DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("habit %s: %w", id, ErrNotFound)
	}
	return nil
}

func habitArgs(h models.Habit) ([]any, error) {
	mini, err := encodeItems(h.MiniItems)
	if err != nil {
		return nil, err
	}
	more, err := encodeItems(h.MoreItems)
	if err != nil {
		return nil, err
	}
	maxItems, err := encodeItems(h.MaxItems)
	if err != nil {
		return nil, err
	}
	return []any{
		h.ID, h.Title, h.StartDate.Format(constants.DateFormat), h.Active, h.CurrentCycle,
		h.CompletedCycles, h.ColorHex, h.Emoji, mini, more, maxItems, h.ReminderEnabled,
		h.ReminderTime, h.WaitingForNextCycle, formatTimestamp(h.CreatedAt), formatTimestamp(h.UpdatedAt),
	}, nil
}

func scanHabit(s scanner) (models.Habit, error) {
	var h models.Habit
	var startDate, mini, more, maxItems, createdAt, updatedAt string

	err := s.Scan(&h.ID, &h.Title, &startDate, &h.Active, &h.CurrentCycle, &h.CompletedCycles,
		&h.ColorHex, &h.Emoji, &mini, &more, &maxItems, &h.ReminderEnabled,
		&h.ReminderTime, &h.WaitingForNextCycle, &createdAt, &updatedAt)
	if err != nil {
		return models.Habit{}, err
	}

	if h.StartDate, err = time.Parse(constants.DateFormat, startDate); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse start_date: %w", err)
	}
	if h.MiniItems, err = decodeItems(mini); err != nil {
		return models.Habit{}, err
	}
	if h.MoreItems, err = decodeItems(more); err != nil {
		return models.Habit{}, err
	}
	if h.MaxItems, err = decodeItems(maxItems); err != nil {
		return models.Habit{}, err
	}
	if h.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return models.Habit{}, err
	}
	if h.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}
