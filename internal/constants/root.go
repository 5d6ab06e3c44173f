package constants

import "time"

const (
	AppName            = "habitcycle"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/habitcycle/habitcycle.db"
	Version            = "v0.3.0"

	// EnvDBConnection holds a PostgreSQL connection string when one is not
	// passed with --config or stored in the OS keyring.
	EnvDBConnection = "HABITCYCLE_DB_CONNECTION"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// CycleLength is the number of calendar days in one habit cycle.
	CycleLength = 20
	// SuccessThreshold is the number of completed days that makes a cycle successful.
	SuccessThreshold = 15

	// Habit display defaults
	DefaultColorHex = "FF6B4A"
	DefaultEmoji    = "⭐️"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitcycle-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "habitcycle-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.habitcycle"
	TrayExecutablePrefix   = "habitcycle-tray"
	ReminderTitle          = "Time for your habit!"
)
