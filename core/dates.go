package core

import "time"

// Weekdays in timetable order; Sunday intentionally has no slot.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// NormalizeDate truncates t to its calendar day at midnight UTC.
// All stored dates go through this so that day equality is a simple compare.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day at midnight UTC.
func Today() time.Time {
	return NormalizeDate(time.Now())
}

// WeekdayName returns the English weekday name of t ("Monday", ...).
func WeekdayName(t time.Time) string {
	return t.UTC().Weekday().String()
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return NormalizeDate(a).Equal(NormalizeDate(b))
}

// IsValidWeekday reports whether day is one of Weekdays.
func IsValidWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}
