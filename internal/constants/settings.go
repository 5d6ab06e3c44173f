package constants

const (
	SettingTimezone                   = "timezone"
	SettingNotificationsEnabled       = "notifications_enabled"
	SettingNotificationGracePeriodMin = "notification_grace_period_min"
	SettingAutoBackup                 = "auto_backup"

	DefaultTimezone                   = "Local" // Use system local timezone by default
	DefaultNotificationsEnabled       = true
	DefaultNotificationGracePeriodMin = 10
	DefaultAutoBackup                 = true
)
