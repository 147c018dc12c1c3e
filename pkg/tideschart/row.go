package tideschart

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spencer-p/hightides/pkg/timetricks"
)

const (
	highGlyph = "▲"
	lowGlyph  = "▼"

	clockExpr = `\d+:\d\d\s*(?:am|pm)`
)

// maxTides is the most events a row may carry. A row may also have one
// fewer, when a tide falls just past midnight.
const maxTides = 4

// rowPattern matches rows such as
//
//	Mon 22 3:36am ▼ 0.98 ft 9:09am ▲ 6.56 ft 3:41pm ▼ 1.64 ft 9:17pm ▲ 7.55 ft ▲ 5:57am ▼ 7:35pm
//
// The trailing ▲ and ▼ pair are sunrise and sunset.
var rowPattern = regexp.MustCompile(`^\s*` +
	`(?P<weekday>Mon|Tue|Wed|Thu|Fri|Sat|Sun)\s+` +
	`(?P<day>\d+)\s+` +
	tideExpr(1) + tideExpr(2) + tideExpr(3) + `(?:` + tideExpr(4) + `)?` +
	highGlyph + `\s*(?P<sunrise>` + clockExpr + `)\s+` +
	lowGlyph + `\s*(?P<sunset>` + clockExpr + `)\s*$`)

func tideExpr(i int) string {
	return fmt.Sprintf(`(?P<time%d>%s)\s+(?P<glyph%d>[%s%s])\s+(?P<height%d>-?\d+(?:\.\d+)?)\s*ft\s+`,
		i, clockExpr, i, highGlyph, lowGlyph, i)
}

var weekdays = map[string]time.Weekday{
	"Sun": time.Sunday,
	"Mon": time.Monday,
	"Tue": time.Tuesday,
	"Wed": time.Wednesday,
	"Thu": time.Thursday,
	"Fri": time.Friday,
	"Sat": time.Saturday,
}

// ParseRow parses the text of one table row. The day of month is resolved
// against today with timetricks.ResolveDay. Every event is validated, low
// tides included.
func ParseRow(raw string, today time.Time) (Row, error) {
	text := strings.NewReplacer("\r", " ", "\n", " ").Replace(raw)

	m := rowPattern.FindStringSubmatch(text)
	if m == nil {
		return Row{}, &ParseError{Raw: raw, Err: errGrammar}
	}
	group := func(name string) string {
		return m[rowPattern.SubexpIndex(name)]
	}

	day, err := strconv.Atoi(group("day"))
	if err != nil {
		return Row{}, &ParseError{Raw: raw, Err: fmt.Errorf("day %q: %w", group("day"), timetricks.ErrInvalidInput)}
	}
	date, err := timetricks.ResolveDay(day, today)
	if err != nil {
		return Row{}, &ParseError{Raw: raw, Err: err}
	}

	row := Row{
		Weekday: weekdays[group("weekday")],
		Date:    date,
	}
	for i := 1; i <= maxTides; i++ {
		clock := group(fmt.Sprintf("time%d", i))
		if clock == "" {
			// Only the fourth event is optional.
			break
		}
		event, err := parseEvent(date, clock,
			group(fmt.Sprintf("glyph%d", i)),
			group(fmt.Sprintf("height%d", i)))
		if err != nil {
			return Row{}, &ParseError{Raw: raw, Err: fmt.Errorf("tide %d: %w", i, err)}
		}
		row.Events = append(row.Events, event)
	}

	if row.Sunrise, err = clockOn(date, group("sunrise")); err != nil {
		return Row{}, &ParseError{Raw: raw, Err: fmt.Errorf("sunrise: %w", err)}
	}
	if row.Sunset, err = clockOn(date, group("sunset")); err != nil {
		return Row{}, &ParseError{Raw: raw, Err: fmt.Errorf("sunset: %w", err)}
	}
	return row, nil
}

// ParseDay is ParseRow that also requires one or two high tides. Any other
// count means the row was not a tide row or the site changed its format.
func ParseDay(raw string, today time.Time) (Row, error) {
	row, err := ParseRow(raw, today)
	if err != nil {
		return Row{}, err
	}
	if n := len(row.HighTides()); n < 1 || n > 2 {
		return Row{}, &ParseError{Raw: raw, Err: fmt.Errorf("found %d high tides, want 1 or 2", n)}
	}
	return row, nil
}

// HighTides parses a row and returns its high tide times in row order.
func HighTides(raw string, today time.Time) ([]time.Time, error) {
	row, err := ParseDay(raw, today)
	if err != nil {
		return nil, err
	}
	return row.HighTides(), nil
}

func parseEvent(date time.Time, clock, glyph, height string) (Event, error) {
	t, err := clockOn(date, clock)
	if err != nil {
		return Event{}, err
	}
	h, err := strconv.ParseFloat(height, 64)
	if err != nil {
		return Event{}, fmt.Errorf("height %q: %w", height, timetricks.ErrInvalidInput)
	}

	tide := LowTide
	if glyph == highGlyph {
		tide = HighTide
	}
	return Event{Time: t, Tide: tide, Height: Height(h)}, nil
}

func clockOn(date time.Time, s string) (time.Time, error) {
	c, err := timetricks.ParseClock(s)
	if err != nil {
		return time.Time{}, err
	}
	return c.On(date), nil
}
