package storage

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/habitcycle/internal/models"
)

const recordColumns = `id, habit_id, day, level, memo, selected_items, created_at, updated_at`

func (r *SQLRepo) UpsertRecord(rec models.DailyRecord) (models.DailyRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	items, err := encodeItems(rec.SelectedItems)
	if err != nil {
		return models.DailyRecord{}, err
	}
	var memo sql.NullString
	if rec.Memo != nil {
		memo = sql.NullString{String: *rec.Memo, Valid: true}
	}
	updatedAt := formatTimestamp(rec.UpdatedAt)
	createdAt := updatedAt
	if !rec.CreatedAt.IsZero() {
		createdAt = formatTimestamp(rec.CreatedAt)
	}

	_, err = r.exec(`INSERT INTO daily_records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (habit_id, day) DO UPDATE SET
			level = excluded.level,
			memo = excluded.memo,
			selected_items = excluded.selected_items,
			updated_at = excluded.updated_at`,
		rec.ID, rec.HabitID, rec.Day, string(rec.Level), memo, items, createdAt, updatedAt)
	if err != nil {
		return models.DailyRecord{}, fmt.Errorf("failed to upsert record: %w", err)
	}

	return r.GetRecord(rec.HabitID, rec.Day)
}

func (r *SQLRepo) GetRecord(habitID, day string) (models.DailyRecord, error) {
	row := r.queryRow(`SELECT `+recordColumns+` FROM daily_records WHERE habit_id = ? AND day = ?`, habitID, day)
	rec, err := scanRecord(row)
	if err != nil {
		return models.DailyRecord{}, notFound(err, "record for habit %s on %s", habitID, day)
	}
	return rec, nil
}

func (r *SQLRepo) GetRecordsForHabit(habitID string) ([]models.DailyRecord, error) {
	return r.queryRecords(`SELECT `+recordColumns+` FROM daily_records
		WHERE habit_id = ? ORDER BY day`, habitID)
}

// GetRecordsInRange returns the habit's records with startDay <= day <= endDay.
func (r *SQLRepo) GetRecordsInRange(habitID, startDay, endDay string) ([]models.DailyRecord, error) {
	return r.queryRecords(`SELECT `+recordColumns+` FROM daily_records
		WHERE habit_id = ? AND day >= ? AND day <= ? ORDER BY day`, habitID, startDay, endDay)
}

func (r *SQLRepo) queryRecords(query string, args ...any) ([]models.DailyRecord, error) {
	rows, err := r.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.DailyRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(s scanner) (models.DailyRecord, error) {
	var rec models.DailyRecord
	var level, items, createdAt, updatedAt string
	var memo sql.NullString

	err := s.Scan(&rec.ID, &rec.HabitID, &rec.Day, &level, &memo, &items, &createdAt, &updatedAt)
	if err != nil {
		return models.DailyRecord{}, err
	}

	rec.Level = models.LevelFromStored(level)
	if memo.Valid {
		rec.Memo = &memo.String
	}
	if rec.SelectedItems, err = decodeItems(items); err != nil {
		return models.DailyRecord{}, err
	}
	if rec.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return models.DailyRecord{}, err
	}
	if rec.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return models.DailyRecord{}, err
	}
	return rec, nil
}
