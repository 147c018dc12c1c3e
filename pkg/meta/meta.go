// Package meta picks out the high tides that happen in daylight, or close
// enough to it to be useful.
package meta

import (
	"fmt"
	"time"

	"github.com/spencer-p/hightides/pkg/tideschart"
)

const firstLightThresh = 30 * time.Minute

// GoodTimes returns the daylight high tides of rows, in order. A high tide
// up to firstLightThresh before sunrise or after sunset still counts.
func GoodTimes(rows []tideschart.Row) []GoodTime {
	result := []GoodTime{}
	for _, row := range rows {
		for _, e := range row.Events {
			// Low tide is not interesting
			if e.Tide != tideschart.HighTide {
				continue
			}
			if gt, ok := goodTime(e, row.Sunrise, row.Sunset); ok {
				result = append(result, gt)
			}
		}
	}
	return result
}

func goodTime(e tideschart.Event, sunrise, sunset time.Time) (GoodTime, bool) {
	high := fmt.Sprintf("tide is high at %.1f ft", float64(e.Height))
	switch {
	case e.Time.Before(sunrise):
		// Dawn patrol.
		diff := sunrise.Sub(e.Time)
		if diff > firstLightThresh {
			return GoodTime{}, false
		}
		return GoodTime{
			Time:    e.Time,
			Reasons: []string{high, fmt.Sprintf("only %.0f minutes before sunrise", diff.Minutes())},
		}, true
	case e.Time.After(sunset):
		diff := e.Time.Sub(sunset)
		if diff > firstLightThresh {
			return GoodTime{}, false
		}
		return GoodTime{
			Time:    e.Time,
			Reasons: []string{high, fmt.Sprintf("%.0f minutes after sunset", diff.Minutes())},
		}, true
	default:
		return GoodTime{Time: e.Time, Reasons: []string{high}}, true
	}
}
