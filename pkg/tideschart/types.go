package tideschart

import (
	"fmt"
	"time"
)

// Event is a single tide event read from a table row.
type Event struct {
	Time time.Time
	// High or Low tide, printed as ▲ or ▼
	Tide Tide
	// Height in feet
	Height Height
}

// Row is one day of a weekly tide table.
type Row struct {
	Weekday time.Weekday
	// Date is midnight of the day the row describes.
	Date    time.Time
	Events  []Event
	Sunrise time.Time
	Sunset  time.Time
}

// HighTides returns the high tide times of the row in table order.
func (r Row) HighTides() []time.Time {
	var highs []time.Time
	for _, e := range r.Events {
		if e.Tide == HighTide {
			highs = append(highs, e.Time)
		}
	}
	return highs
}

// WeekdayMatches reports whether the printed weekday agrees with the
// resolved date. A mismatch means the day number was resolved into the wrong
// month.
func (r Row) WeekdayMatches() bool {
	return r.Date.Weekday() == r.Weekday
}

type Height float64

type Tide uint

const (
	HighTide Tide = iota
	LowTide
)

func (t Tide) Valid() bool {
	return t == HighTide || t == LowTide
}

func (t Tide) String() string {
	switch t {
	case HighTide:
		return "H"
	case LowTide:
		return "L"
	default:
		return "invalid"
	}
}

func (e Event) String() string {
	return fmt.Sprintf("{t: %s, v: %.2f, type: %s}",
		e.Time.Format(time.RFC822),
		e.Height,
		e.Tide.String())
}
