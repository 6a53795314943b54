// Package alarm holds the alarm record and its occurrence arithmetic.
package alarm

import (
	"errors"
	"math"
	"time"
)

// Alarm describes one scheduled wake event. IDs derive from creation time
// and stay stable for the record's lifetime; the scheduler uses them as the
// timer correlation key.
type Alarm struct {
	ID        int64          `json:"id"`
	Hour      int            `json:"hour"`
	Minute    int            `json:"minute"`
	FolderURI string         `json:"folderUri"`
	Days      []time.Weekday `json:"days"`
	IsActive  bool           `json:"isActive"`
	Volume    float64        `json:"volume"`
}

// NewID derives a fresh alarm ID from the creation instant.
func NewID(now time.Time) int64 {
	return now.UnixMilli()
}

func (a Alarm) Validate() error {
	switch {
	case a.Hour < 0 || a.Hour > 23:
		return errors.New("hour must be in 0..23")
	case a.Minute < 0 || a.Minute > 59:
		return errors.New("minute must be in 0..59")
	case a.FolderURI == "":
		return errors.New("folder is required")
	case math.IsNaN(a.Volume) || a.Volume < 0 || a.Volume > 1:
		return errors.New("volume must be in [0,1]")
	}

	seen := make(map[time.Weekday]struct{}, len(a.Days))
	for _, d := range a.Days {
		if d < time.Sunday || d > time.Saturday {
			return errors.New("day must be in 0..6")
		}
		if _, ok := seen[d]; ok {
			return errors.New("duplicate day")
		}
		seen[d] = struct{}{}
	}

	return nil
}

// Repeats reports whether the alarm fires on a weekly weekday pattern.
// An alarm with no days fires once and is then deactivated.
func (a Alarm) Repeats() bool {
	return len(a.Days) > 0
}

func (a Alarm) NextOccurrence(now time.Time) (time.Time, bool) {
	return NextOccurrence(a.Hour, a.Minute, a.Days, now)
}

// NextOccurrence computes the earliest instant strictly after now at which
// an alarm with the given time of day and weekday set is due.
//
// With no days the candidate is today at hh:mm:00; if that is not strictly
// after now it moves to tomorrow. With days the scan walks day offsets 0..7
// and returns the first candidate landing on a selected weekday strictly
// after now. A week fully covers all weekday identities, so the scan can
// only come back empty on the defensive branch.
func NextOccurrence(hour, minute int, days []time.Weekday, now time.Time) (time.Time, bool) {
	if len(days) == 0 {
		next := at(now, 0, hour, minute)
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		return next, true
	}

	for offset := 0; offset <= 7; offset++ {
		candidate := at(now, offset, hour, minute)
		if hasDay(days, candidate.Weekday()) && candidate.After(now) {
			return candidate, true
		}
	}

	return time.Time{}, false
}

// at builds the hh:mm:00.000 instant offset days from now, in now's location.
func at(now time.Time, offset, hour, minute int) time.Time {
	day := now.AddDate(0, 0, offset)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
}

func hasDay(days []time.Weekday, d time.Weekday) bool {
	for _, v := range days {
		if v == d {
			return true
		}
	}
	return false
}
