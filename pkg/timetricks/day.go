package timetricks

import (
	"fmt"
	"time"
)

// ResolveDay converts a day of month printed in a weekly table to a date.
//
// The table always starts today, so a day number smaller than today's must
// belong to the next month (wrapping into January of the next year). Tables
// that show the tail of the previous month are not supported. The result is
// not checked against the seven day window; see WithinWeekOf.
func ResolveDay(day int, today time.Time) (time.Time, error) {
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: day of month %d", ErrInvalidInput, day)
	}

	year, month := today.Year(), today.Month()
	if day < today.Day() {
		month++
	}
	if month > time.December {
		month = time.January
		year++
	}

	resolved := time.Date(year, month, day, 0, 0, 0, 0, today.Location())
	// time.Date normalizes the 31st of a 30 day month into the next month.
	if resolved.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %s has no day %d", ErrInvalidInput, month, day)
	}
	return resolved, nil
}
