// Package data persists fetched tide tables. Postgres is reached through
// gorm; SQLite is used for single machine runs.
package data

import (
	"time"

	"github.com/spencer-p/hightides/pkg/tides"
	"github.com/spencer-p/hightides/pkg/tideschart"
)

// Tide is one stored tide event.
type Tide struct {
	Location string
	Time     time.Time
	High     bool
	// Height in feet
	Height    float64
	FetchedAt time.Time
}

// records flattens a result into one Tide per event.
func records(r tides.Result) []Tide {
	var out []Tide
	for _, row := range r.Rows {
		for _, e := range row.Events {
			out = append(out, Tide{
				Location:  r.Location.Key(),
				Time:      e.Time,
				High:      e.Tide == tideschart.HighTide,
				Height:    float64(e.Height),
				FetchedAt: r.Fetched,
			})
		}
	}
	return out
}
