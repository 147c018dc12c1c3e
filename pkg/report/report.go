// Package report formats run results for people and for programs.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/spencer-p/hightides/pkg/meta"
	"github.com/spencer-p/hightides/pkg/tides"
	"github.com/spencer-p/hightides/pkg/timetricks"
)

var (
	colorPrimary = lipgloss.Color("#00BFFF")
	colorDanger  = lipgloss.Color("#FF6B6B")
	colorMuted   = lipgloss.Color("#6C757D")
	colorBorder  = lipgloss.Color("#4A90E2")
	colorSuccess = lipgloss.Color("#6BCF7F")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	dayStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger)

	goodStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)
)

// Entry is the machine readable result of one location.
type Entry struct {
	Location  string      `json:"location"`
	Outcome   string      `json:"outcome"`
	HighTides []time.Time `json:"high_tides,omitempty"`
	// GoodTimes are the high tides in or near daylight.
	GoodTimes []meta.GoodTime `json:"good_times,omitempty"`
	Error     string          `json:"error,omitempty"`
	// Archived are previously stored high tides, filled in for failed
	// locations when a store is available.
	Archived []time.Time `json:"archived_high_tides,omitempty"`
}

// Entries lists results in keys order. Keys without a result are reported
// as missing.
func Entries(keys []string, results tides.Results) []Entry {
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		r, ok := results[k]
		e := Entry{Location: k, Outcome: tides.Outcome(r.Err)}
		switch {
		case !ok:
			e.Outcome, e.Error = "missing", "location was not processed"
		case r.Err != nil:
			e.Error = r.Err.Error()
		default:
			e.HighTides = r.HighTides
			if len(r.Rows) > 0 {
				e.GoodTimes = meta.GoodTimes(r.Rows)
			}
		}
		entries = append(entries, e)
	}
	return entries
}

// Text writes one line per location and day, without styling.
func Text(w io.Writer, keys []string, results tides.Results) error {
	return WriteEntries(w, Entries(keys, results))
}

// WriteEntries is Text for entries that were already built. Archived high
// tides of failed entries are marked as such.
func WriteEntries(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		if e.Error != "" {
			if _, err := fmt.Fprintf(w, "%s\t%s: %s\n", e.Location, e.Outcome, e.Error); err != nil {
				return err
			}
		}
		for _, day := range byDay(e.HighTides) {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", e.Location, day.label, strings.Join(day.clocks, " ")); err != nil {
				return err
			}
		}
		for _, day := range byDay(e.Archived) {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t(archived)\n", e.Location, day.label, strings.Join(day.clocks, " ")); err != nil {
				return err
			}
		}
	}
	return nil
}

// Render writes a bordered pane per location for terminals.
func Render(w io.Writer, keys []string, results tides.Results) error {
	var panes []string
	for _, e := range Entries(keys, results) {
		var b strings.Builder
		b.WriteString(titleStyle.Render(e.Location))
		if e.Error != "" {
			b.WriteString("\n" + errorStyle.Render(e.Outcome+": "+e.Error))
		}
		for _, day := range byDay(e.HighTides) {
			b.WriteString("\n" + dayStyle.Render(day.label) + "  " + strings.Join(day.clocks, "  "))
		}
		if len(e.GoodTimes) > 0 {
			b.WriteString("\n" + goodStyle.Render("In daylight:"))
			for _, gt := range e.GoodTimes {
				b.WriteString("\n  " + gt.String())
			}
		}
		panes = append(panes, paneStyle.Render(b.String()))
	}
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, panes...))
	return err
}

type day struct {
	label  string
	clocks []string
}

// byDay groups times by calendar day, keeping order.
func byDay(times []time.Time) []day {
	var days []day
	for i, t := range times {
		if i == 0 || !timetricks.SameDay(times[i-1], t) {
			days = append(days, day{label: t.Format("Mon Jan 2")})
		}
		last := &days[len(days)-1]
		last.clocks = append(last.clocks, t.Format(time.Kitchen))
	}
	return days
}
