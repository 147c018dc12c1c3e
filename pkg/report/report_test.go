package report

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spencer-p/hightides/pkg/locations"
	"github.com/spencer-p/hightides/pkg/meta"
	"github.com/spencer-p/hightides/pkg/tides"
	"github.com/spencer-p/hightides/pkg/tideschart"
)

func at(d, hh, mm int) time.Time {
	return time.Date(2021, time.November, d, hh, mm, 0, 0, time.UTC)
}

var (
	keys    = []string{"Salisbury, MA, USA", "Atlantis", "Nowhere"}
	results = tides.Results{
		"Salisbury, MA, USA": {
			Location:  locations.Search{Query: "Salisbury, MA, USA", Hint: "/Salisbury/"},
			HighTides: []time.Time{at(22, 9, 9), at(22, 21, 17), at(23, 9, 51)},
		},
		"Atlantis": {
			Location: locations.Search{Query: "Atlantis", Hint: "/Atlantis/"},
			Err:      fmt.Errorf("%w: gave up", tides.ErrLayout),
		},
	}
)

func TestEntries(t *testing.T) {
	want := []Entry{
		{Location: "Salisbury, MA, USA", Outcome: "ok", HighTides: []time.Time{at(22, 9, 9), at(22, 21, 17), at(23, 9, 51)}},
		{Location: "Atlantis", Outcome: "layout", Error: "unexpected page layout: gave up"},
		{Location: "Nowhere", Outcome: "missing", Error: "location was not processed"},
	}
	if diff := cmp.Diff(want, Entries(keys, results)); diff != "" {
		t.Errorf("entries (-want,+got): %s", diff)
	}
}

func TestRenderHasEveryLocation(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, keys, results); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range append(keys, "Mon Nov 22", "9:09AM", "9:17PM", "Tue Nov 23") {
		if !strings.Contains(out, want) {
			t.Errorf("report is missing %q:\n%s", want, out)
		}
	}
}

func TestTextWriteError(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "report")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	if err := Text(f, keys, results); !errors.Is(err, os.ErrClosed) {
		t.Errorf("got %v, want os.ErrClosed", err)
	}
}

func ExampleText() {
	Text(os.Stdout, keys, results)
	// Output:
	// Salisbury, MA, USA	Mon Nov 22	9:09AM 9:17PM
	// Salisbury, MA, USA	Tue Nov 23	9:51AM
	// Atlantis	layout: unexpected page layout: gave up
	// Nowhere	missing: location was not processed
}

func TestEntriesGoodTimes(t *testing.T) {
	rs := tides.Results{
		"Salisbury, MA, USA": {
			HighTides: []time.Time{at(22, 9, 9), at(22, 21, 17)},
			Rows: []tideschart.Row{{
				Date: at(22, 0, 0),
				Events: []tideschart.Event{
					{Time: at(22, 9, 9), Tide: tideschart.HighTide, Height: 6.56},
					{Time: at(22, 21, 17), Tide: tideschart.HighTide, Height: 7.55},
				},
				Sunrise: at(22, 6, 57),
				Sunset:  at(22, 16, 15),
			}},
		},
	}
	entries := Entries([]string{"Salisbury, MA, USA"}, rs)
	want := []meta.GoodTime{{Time: at(22, 9, 9), Reasons: []string{"tide is high at 6.6 ft"}}}
	if diff := cmp.Diff(want, entries[0].GoodTimes); diff != "" {
		t.Errorf("good times (-want,+got): %s", diff)
	}

	var buf bytes.Buffer
	if err := Render(&buf, []string{"Salisbury, MA, USA"}, rs); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "In daylight:") {
		t.Errorf("daylight section missing:\n%s", buf.String())
	}
}
