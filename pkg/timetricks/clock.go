package timetricks

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([aApP][mM])$`)

// Clock is a time of day with minute precision.
type Clock struct {
	Hour, Minute int
}

// ParseClock reads a 12-hour clock such as "3:41pm" or "11:59 PM".
func ParseClock(s string) (Clock, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Clock{}, fmt.Errorf("%w: clock %q", ErrInvalidInput, s)
	}

	// The pattern guarantees at most two digits each.
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour < 1 || hour > 12 {
		return Clock{}, fmt.Errorf("%w: clock %q has hour %d", ErrInvalidInput, s, hour)
	}
	if minute > 59 {
		return Clock{}, fmt.Errorf("%w: clock %q has minute %d", ErrInvalidInput, s, minute)
	}

	pm := strings.EqualFold(m[3], "pm")
	switch {
	case hour == 12 && !pm:
		hour = 0
	case hour != 12 && pm:
		hour += 12
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// On returns the clock on the calendar date of t, in t's location.
func (c Clock) On(t time.Time) time.Time {
	return SetClock(t, c.Hour, c.Minute)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}
