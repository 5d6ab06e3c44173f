package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/habitcycle/internal/constants"
)

// LoadLocation resolves the timezone setting. "" and "Local" mean the
// system timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// ParseTimeOfDay parses a strict HH:MM reminder time.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	if len(s) != len(constants.TimeFormat) || s[2] != ':' {
		return 0, 0, fmt.Errorf("invalid time %q (expected HH:MM)", s)
	}
	hour, herr := strconv.Atoi(s[:2])
	minute, merr := strconv.Atoi(s[3:])
	if herr != nil || merr != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q (expected HH:MM)", s)
	}
	return hour, minute, nil
}

func ValidateTimeFormat(s string) bool {
	_, _, err := ParseTimeOfDay(s)
	return err == nil
}

// ValidateDateFormat reports whether s is a real YYYY-MM-DD civil day.
func ValidateDateFormat(s string) bool {
	t, err := time.Parse(constants.DateFormat, s)
	return err == nil && t.Format(constants.DateFormat) == s
}

// ReminderTrigger returns the moment a reminder set for timeOfDay fires on day.
func ReminderTrigger(day, timeOfDay string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(constants.DateFormat, day, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", day, err)
	}
	hour, minute, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc), nil
}
