// Package timetricks holds the calendar arithmetic needed to turn the bare
// day numbers and 12-hour clock strings printed in a weekly tide table into
// absolute times.
package timetricks

import (
	"errors"
	"time"
)

const dayFormat = "20060102"

// ErrInvalidInput is returned for a malformed day number or clock string.
var ErrInvalidInput = errors.New("invalid input")

func SameDay(t time.Time, t2 time.Time) bool {
	return t.Format(dayFormat) == t2.Format(dayFormat)
}

func TrimClock(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WithinWeekOf reports whether t falls in the seven calendar days starting
// with today.
func WithinWeekOf(t time.Time, today time.Time) bool {
	// Trim today so it has no wall clock component, just calendar date. t
	// must fall before midnight of the eighth day, and after the start of
	// today (minus a minute in case t falls at midnight).
	start := TrimClock(today)
	nextWeek := start.AddDate(0, 0, 7)
	return t.After(start.Add(-1*time.Minute)) && t.Before(nextWeek)
}

// SetClock returns the given wall clock time on t's calendar day.
func SetClock(t time.Time, hour, minute int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, t.Location())
}

// UniqueDay returns a string representation of t that is unique by the day.
// For instance, two seperate times on the same calendar day return identical
// strings.
func UniqueDay(t time.Time) string {
	return t.Format(dayFormat)
}

// Day names t's calendar day relative to now: "Today", "Tomorrow", a
// weekday name within the coming week, and "01/02" beyond.
func Day(t time.Time, now time.Time) string {
	start := TrimClock(now)
	day := TrimClock(t.In(now.Location()))
	switch {
	case day.Equal(start):
		return "Today"
	case day.Equal(start.AddDate(0, 0, 1)):
		return "Tomorrow"
	case day.After(start) && WithinWeekOf(day, now):
		return t.Weekday().String()
	default:
		return t.Format("01/02")
	}
}
