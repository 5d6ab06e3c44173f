package storage

import "github.com/julianstephens/habitcycle/internal/models"

// Repo holds the data operations shared by every backend. A Repo handed to
// an InTx callback is bound to that transaction.
type Repo interface {
	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetAllHabits(activeOnly bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	// DeleteHabit removes the habit together with its records, histories and reminder.
	DeleteHabit(id string) error

	// Daily records
	// UpsertRecord creates or replaces the record for (HabitID, Day) and
	// returns the stored row. The first record's ID and CreatedAt survive updates.
	UpsertRecord(models.DailyRecord) (models.DailyRecord, error)
	GetRecord(habitID, day string) (models.DailyRecord, error)
	GetRecordsForHabit(habitID string) ([]models.DailyRecord, error)
	GetRecordsInRange(habitID, startDay, endDay string) ([]models.DailyRecord, error)

	// Cycle histories
	// AddCycleHistory inserts a frozen history. An existing history for the
	// same (HabitID, CycleNumber) is left untouched.
	AddCycleHistory(models.CycleHistory) error
	GetCycleHistories(habitID string) ([]models.CycleHistory, error)
	GetCycleHistory(habitID string, cycleNumber int) (models.CycleHistory, error)

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Reminders
	SaveReminder(models.Reminder) error
	DeleteReminder(habitID string) error
	GetReminders() ([]models.Reminder, error)
	MarkReminderSent(habitID, day string) error
}

type Provider interface {
	Repo

	// Lifecycle
	Init() error
	Load() error
	Close() error

	// InTx runs fn against a transaction-bound Repo. The transaction commits
	// when fn returns nil and rolls back otherwise.
	InTx(fn func(Repo) error) error

	// SchemaStatus reports the applied and the newest embedded schema versions.
	SchemaStatus() (current, latest int, err error)
	// Migrate applies pending schema migrations and returns how many ran.
	Migrate(logFn func(string)) (int, error)

	// Utils
	GetConfigPath() string
}
