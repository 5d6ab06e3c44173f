package storage

import (
	"fmt"

	"github.com/julianstephens/habitcycle/internal/models"
)

func (r *SQLRepo) GetSettings() (models.Settings, error) {
	rows, err := r.query("SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	data := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		data[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}

	if len(data) == 0 {
		return models.Settings{}, fmt.Errorf("settings: %w", ErrNotFound)
	}

	return models.MapToSettings(data)
}

func (r *SQLRepo) SaveSettings(settings models.Settings) error {
	for key, value := range models.SettingsToMap(settings) {
		_, err := r.exec(`INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
		if err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	return nil
}
