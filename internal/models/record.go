package models

import "time"

// DailyRecord is a habit's check-in for one calendar day.
type DailyRecord struct {
	ID            string          `json:"id"`
	HabitID       string          `json:"habit_id"`
	Day           string          `json:"day"` // YYYY-MM-DD format
	Level         CompletionLevel `json:"level"`
	Memo          *string         `json:"memo,omitempty"`
	SelectedItems []string        `json:"selected_items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CycleHistory is the frozen summary of a closed cycle. It is never updated.
type CycleHistory struct {
	ID            string    `json:"id"`
	HabitID       string    `json:"habit_id"`
	CycleNumber   int       `json:"cycle_number"`
	StartDay      string    `json:"start_day"` // YYYY-MM-DD format
	EndDay        string    `json:"end_day"`   // YYYY-MM-DD format
	CompletedDays int       `json:"completed_days"`
	Successful    bool      `json:"successful"`
	MiniCount     int       `json:"mini_count"`
	MoreCount     int       `json:"more_count"`
	MaxCount      int       `json:"max_count"`
	SkipCount     int       `json:"skip_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Reminder is the persisted daily reminder schedule of a habit.
type Reminder struct {
	HabitID     string `json:"habit_id"`
	TimeOfDay   string `json:"time_of_day"`             // HH:MM format
	LastSentDay string `json:"last_sent_day,omitempty"` // YYYY-MM-DD format
}
