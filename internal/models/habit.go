package models

import "time"

// Habit is a practice tracked in consecutive 20-day cycles.
type Habit struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	StartDate           time.Time `json:"start_date"` // only the calendar date is meaningful
	Active              bool      `json:"active"`
	CurrentCycle        int       `json:"current_cycle"`
	CompletedCycles     int       `json:"completed_cycles"`
	ColorHex            string    `json:"color_hex"`
	Emoji               string    `json:"emoji"`
	MiniItems           []string  `json:"mini_items"`
	MoreItems           []string  `json:"more_items"`
	MaxItems            []string  `json:"max_items"`
	ReminderEnabled     bool      `json:"reminder_enabled"`
	ReminderTime        string    `json:"reminder_time,omitempty"` // HH:MM format
	WaitingForNextCycle bool      `json:"waiting_for_next_cycle"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ItemsFor returns the goal items configured for a level. SKIP and none have no items.
func (h Habit) ItemsFor(level CompletionLevel) []string {
	switch level {
	case LevelMini:
		return h.MiniItems
	case LevelMore:
		return h.MoreItems
	case LevelMax:
		return h.MaxItems
	}
	return nil
}

// HasReminder reports whether a daily reminder should be scheduled for the habit.
func (h Habit) HasReminder() bool {
	return h.ReminderEnabled && h.ReminderTime != ""
}
