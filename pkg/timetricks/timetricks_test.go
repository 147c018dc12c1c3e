package timetricks

import (
	"fmt"
	"testing"
	"time"
)

func ExampleWithinWeekOf() {
	today := time.Date(2022, time.August, 16, 10, 30, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		fmt.Println(i, WithinWeekOf(today.Add(time.Duration(i)*24*time.Hour), today))
	}
	// Output:
	// 0 true
	// 1 true
	// 2 true
	// 3 true
	// 4 true
	// 5 true
	// 6 true
	// 7 false
}

func ExampleResolveDay() {
	today := time.Date(2022, time.December, 28, 0, 0, 0, 0, time.UTC)
	for _, day := range []int{28, 31, 2} {
		d, _ := ResolveDay(day, today)
		fmt.Println(d.Format("2006-01-02"))
	}
	// Output:
	// 2022-12-28
	// 2022-12-31
	// 2023-01-02
}

func ExampleDay() {
	now := time.Date(2022, time.August, 16, 10, 30, 0, 0, time.UTC)
	for _, d := range []int{15, 16, 17, 19, 22, 23} {
		fmt.Println(Day(time.Date(2022, time.August, d, 18, 0, 0, 0, time.UTC), now))
	}
	// Output:
	// 08/15
	// Today
	// Tomorrow
	// Friday
	// Monday
	// 08/23
}

func TestWithinWeekOfBounds(t *testing.T) {
	today := time.Date(2022, time.August, 16, 10, 30, 0, 0, time.UTC)
	table := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"yesterday evening", time.Date(2022, time.August, 15, 23, 0, 0, 0, time.UTC), false},
		{"midnight today", time.Date(2022, time.August, 16, 0, 0, 0, 0, time.UTC), true},
		{"earlier today", time.Date(2022, time.August, 16, 6, 0, 0, 0, time.UTC), true},
		{"last minute of the seventh day", time.Date(2022, time.August, 22, 23, 59, 0, 0, time.UTC), true},
		{"midnight of the eighth day", time.Date(2022, time.August, 23, 0, 0, 0, 0, time.UTC), false},
		{"eighth day", time.Date(2022, time.August, 23, 18, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			if got := WithinWeekOf(tc.t, today); got != tc.want {
				t.Errorf("WithinWeekOf(%s) = %t, want %t", tc.t, got, tc.want)
			}
		})
	}
}

func TestDayBeyondWeek(t *testing.T) {
	now := time.Date(2022, time.August, 16, 10, 30, 0, 0, time.UTC)
	if got := Day(time.Date(2022, time.August, 23, 18, 0, 0, 0, time.UTC), now); got != "08/23" {
		t.Errorf("got %q, want %q", got, "08/23")
	}
}
