// Package timeslot holds the pure slot arithmetic shared by the capacity
// ledger and the booking lifecycle: clock-label parsing, half-open interval
// overlap, and slot generation from availability windows.
package timeslot

import (
	"fmt"
	"time"
)

const (
	// ClockLayout is the canonical slot label form, e.g. "02:30 PM".
	ClockLayout = "03:04 PM"
	// clock24Layout is accepted on input for API convenience.
	clock24Layout = "15:04"

	// MinutesPerDay bounds every minute-from-midnight value.
	MinutesPerDay = 24 * 60
)

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2) share
// at least one instant. Boundary-touching intervals (e1 == s2) do not
// overlap. This is the single authoritative overlap test for every capacity
// and employee-assignment check.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && e1 > s2
}

// Slots steps from start to end (exclusive) in increments of step minutes and
// returns each slot-start instant. The result is strictly increasing with
// length floor((end-start)/step). Invalid windows are rejected at window
// creation, not here; a non-positive step yields nil.
func Slots(start, end, step int) []int {
	if step <= 0 || end <= start {
		return nil
	}
	slots := make([]int, 0, (end-start)/step)
	for at := start; at < end; at += step {
		slots = append(slots, at)
	}
	return slots
}

// FormatClock renders minutes-from-midnight as a slot label like "09:00 AM".
func FormatClock(minute int) string {
	base := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(minute) * time.Minute).Format(ClockLayout)
}

// ParseClock converts a slot label to minutes from midnight. Both the
// canonical 12-hour form ("02:30 PM") and a 24-hour form ("14:30") are
// accepted.
func ParseClock(label string) (int, error) {
	for _, layout := range []string{ClockLayout, clock24Layout} {
		if t, err := time.Parse(layout, label); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("invalid time %q", label)
}

// ValidMinute reports whether minute falls within a single day.
func ValidMinute(minute int) bool {
	return minute >= 0 && minute < MinutesPerDay
}
