package storage

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/habitcycle/internal/models"
)

const historyColumns = `id, habit_id, cycle_number, start_day, end_day, completed_days,
	successful, mini_count, more_count, max_count, skip_count, created_at`

func (r *SQLRepo) AddCycleHistory(h models.CycleHistory) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	_, err := r.exec(`INSERT INTO cycle_histories (`+historyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (habit_id, cycle_number) DO NOTHING`,
		h.ID, h.HabitID, h.CycleNumber, h.StartDay, h.EndDay, h.CompletedDays,
		h.Successful, h.MiniCount, h.MoreCount, h.MaxCount, h.SkipCount, formatTimestamp(h.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert cycle history: %w", err)
	}
	return nil
}

func (r *SQLRepo) GetCycleHistories(habitID string) ([]models.CycleHistory, error) {
	rows, err := r.query(`SELECT `+historyColumns+` FROM cycle_histories
		WHERE habit_id = ? ORDER BY cycle_number`, habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	histories := []models.CycleHistory{}
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		histories = append(histories, h)
	}
	return histories, rows.Err()
}

func (r *SQLRepo) GetCycleHistory(habitID string, cycleNumber int) (models.CycleHistory, error) {
	row := r.queryRow(`SELECT `+historyColumns+` FROM cycle_histories
		WHERE habit_id = ? AND cycle_number = ?`, habitID, cycleNumber)
	h, err := scanHistory(row)
	if err != nil {
		return models.CycleHistory{}, notFound(err, "cycle %d of habit %s", cycleNumber, habitID)
	}
	return h, nil
}

func scanHistory(s scanner) (models.CycleHistory, error) {
	var h models.CycleHistory
	var createdAt string

	err := s.Scan(&h.ID, &h.HabitID, &h.CycleNumber, &h.StartDay, &h.EndDay, &h.CompletedDays,
		&h.Successful, &h.MiniCount, &h.MoreCount, &h.MaxCount, &h.SkipCount, &createdAt)
	if err != nil {
		return models.CycleHistory{}, err
	}
	if h.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return models.CycleHistory{}, err
	}
	return h, nil
}
