// Package cycle derives a habit's 20-day cycle windows from its start date.
//
// All arithmetic is done on calendar dates, never on 24h durations, so a
// daylight-saving transition can neither skip nor repeat a day. "now" is
// interpreted in its own location; callers convert it to the user's
// configured timezone first.
package cycle

import (
	"time"

	"github.com/julianstephens/habitcycle/internal/constants"
	"github.com/julianstephens/habitcycle/internal/models"
)

const (
	Length           = constants.CycleLength
	SuccessThreshold = constants.SuccessThreshold
)

// Slot is one day of a cycle, resolved to zero or one record.
type Slot struct {
	Day    string
	Record *models.DailyRecord
}

// Level returns the slot's level, LevelNone when no record exists.
func (s Slot) Level() models.CompletionLevel {
	if s.Record == nil {
		return models.LevelNone
	}
	return s.Record.Level
}

// civil maps t to midnight UTC of its calendar date in t's location.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the calendar day of now (YYYY-MM-DD).
func Today(now time.Time) string {
	return now.Format(constants.DateFormat)
}

// ParseDay parses a YYYY-MM-DD day.
func ParseDay(day string) (time.Time, error) {
	return time.Parse(constants.DateFormat, day)
}

// AddDays offsets a calendar date by n days.
func AddDays(t time.Time, n int) time.Time {
	return civil(t).AddDate(0, 0, n)
}

// DaysBetween returns the signed number of calendar days from one date to another.
func DaysBetween(from, to time.Time) int {
	return int(civil(to).Sub(civil(from)).Hours() / 24)
}

// BucketIndex returns the zero-based index of the window now falls in.
// A now before the start date clamps to 0.
func BucketIndex(start, now time.Time) int {
	days := DaysBetween(start, now)
	if days < 0 {
		return 0
	}
	return days / Length
}

// CycleStartDate returns the first day of the window containing now.
func CycleStartDate(habit models.Habit, now time.Time) time.Time {
	return AddDays(habit.StartDate, Length*BucketIndex(habit.StartDate, now))
}

// CycleEndDate returns the last day of the window containing now.
func CycleEndDate(habit models.Habit, now time.Time) time.Time {
	return AddDays(CycleStartDate(habit, now), Length-1)
}

// CycleDayIndex returns the 1-based position of now in its window, clamped to [1, Length].
func CycleDayIndex(habit models.Habit, now time.Time) int {
	days := DaysBetween(CycleStartDate(habit, now), now)
	if days < 0 {
		days = 0
	}
	return min(days+1, Length)
}

// Window returns the first and last day of cycle number n (1-based).
func Window(start time.Time, n int) (time.Time, time.Time) {
	if n < 1 {
		n = 1
	}
	first := AddDays(start, Length*(n-1))
	return first, AddDays(first, Length-1)
}

// IsAfter reports whether now's calendar day is strictly after day.
func IsAfter(now, day time.Time) bool {
	return DaysBetween(day, now) > 0
}

// SlotsFrom resolves the Length days starting at first against records by exact day match.
func SlotsFrom(first time.Time, records []models.DailyRecord) []Slot {
	slots := make([]Slot, Length)
	for i := range slots {
		day := AddDays(first, i).Format(constants.DateFormat)
		slots[i].Day = day
		for j := range records {
			if records[j].Day == day {
				rec := records[j]
				slots[i].Record = &rec
				break
			}
		}
	}
	return slots
}

// CycleRecordSlots returns the Length slots of the window containing now.
func CycleRecordSlots(habit models.Habit, records []models.DailyRecord, now time.Time) []Slot {
	return SlotsFrom(CycleStartDate(habit, now), records)
}
