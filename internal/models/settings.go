package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/habitcycle/internal/constants"
)

// Settings represents application-wide settings
type Settings struct {
	Timezone                   string `json:"timezone"`                      // IANA timezone name, or "Local" for the system timezone
	NotificationsEnabled       bool   `json:"notifications_enabled"`         // whether reminders are delivered
	NotificationGracePeriodMin int    `json:"notification_grace_period_min"` // how late a reminder may still be delivered
	AutoBackup                 bool   `json:"auto_backup"`                   // snapshot the database before destructive commands
}

// DefaultSettings returns the settings written by a fresh init.
func DefaultSettings() Settings {
	return Settings{
		Timezone:                   constants.DefaultTimezone,
		NotificationsEnabled:       constants.DefaultNotificationsEnabled,
		NotificationGracePeriodMin: constants.DefaultNotificationGracePeriodMin,
		AutoBackup:                 constants.DefaultAutoBackup,
	}
}

// MapToSettings converts a map of key-value pairs to a Settings struct.
// Keys missing from the map keep their default values.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := DefaultSettings()

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingNotificationsEnabled:
			settings.NotificationsEnabled = value == "true"
		case constants.SettingNotificationGracePeriodMin:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.NotificationGracePeriodMin = n
		case constants.SettingAutoBackup:
			settings.AutoBackup = value == "true"
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:                   settings.Timezone,
		constants.SettingNotificationsEnabled:       strconv.FormatBool(settings.NotificationsEnabled),
		constants.SettingNotificationGracePeriodMin: strconv.Itoa(settings.NotificationGracePeriodMin),
		constants.SettingAutoBackup:                 strconv.FormatBool(settings.AutoBackup),
	}
}

// SetSetting updates a single setting by key, validating the value.
func SetSetting(settings *Settings, key, value string) error {
	data := SettingsToMap(*settings)
	if _, ok := data[key]; !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	switch key {
	case constants.SettingNotificationsEnabled, constants.SettingAutoBackup:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("setting %s expects true or false", key)
		}
		value = strconv.FormatBool(b)
	case constants.SettingNotificationGracePeriodMin:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("setting %s expects a non-negative number of minutes", key)
		}
	}
	data[key] = value
	updated, err := MapToSettings(data)
	if err != nil {
		return err
	}
	*settings = updated
	return nil
}
