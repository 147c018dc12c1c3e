package meta

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spencer-p/hightides/pkg/timetricks"
)

const timeFmt = "3:04 PM"

// GoodTime is a high tide worth showing up for.
type GoodTime struct {
	Time     time.Time     `json:"time"`
	Reasons  []string      `json:"reasons"`
	Duration time.Duration `json:"duration,omitempty"`

	// PrettyTime is a human-readable version of the time, relative to the
	// current date. Optional.
	PrettyTime string `json:"pretty_time,omitempty"`
}

func (gt GoodTime) String() string {
	return gt.stringAt(time.Now())
}

func (gt GoodTime) stringAt(now time.Time) string {
	return fmt.Sprintf("%s, %s",
		gt.prettyTime(now),
		strings.Join(gt.Reasons, " and "))
}

func (gt GoodTime) prettyTime(now time.Time) string {
	return fmt.Sprintf("%s at %s", timetricks.Day(gt.Time, now), gt.TimeRange())
}

// TimeRange returns a time range for the goodtime, similar to PrettyTime
// without the date.
func (gt GoodTime) TimeRange() string {
	until := ""
	if gt.Duration != 0 {
		until = fmt.Sprintf(" until %s", gt.Time.Add(gt.Duration).Format(timeFmt))
	}
	return fmt.Sprintf("%s%s", gt.Time.Format(timeFmt), until)
}

func (gt GoodTime) MarshalJSON() ([]byte, error) {
	// Fill in pretty time if needed. The alias drops this method so Marshal
	// does not recurse.
	type plain GoodTime
	if gt.PrettyTime == "" {
		gt.PrettyTime = gt.prettyTime(time.Now())
	}
	return json.Marshal(plain(gt))
}
