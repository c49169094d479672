// Package vntime holds the fixed UTC+7 clock used by every schedule source.
package vntime

import (
	"fmt"
	"time"

	"radio-epg/consts"
)

// Location is Vietnam local time. There is no DST so a fixed zone is enough
// and the output never depends on the host tzdata.
var Location = time.FixedZone("ICT", 7*60*60)

// Fallbacks after RFC 3339. Layouts without an offset are read as local time.
var (
	zonedLayouts = []string{"2006-01-02 15:04:05Z07:00", "2006-01-02T15:04Z07:00", "2006-01-02 15:04Z07:00"}
	localLayouts = []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02 15:04"}
)

// Now returns the current instant in Location.
func Now() time.Time {
	return time.Now().In(Location)
}

// Format renders t as an XMLTV timestamp, e.g. "20261015070000 +0700".
func Format(t time.Time) string {
	return t.In(Location).Format(consts.TIME_FORMAT)
}

// DateKey renders the calendar date of t as dd_mm_yyyy.
func DateKey(t time.Time) string {
	return t.In(Location).Format("02_01_2006")
}

// ComposeFromTimeOfDay places hour:minute on the calendar date of ref.
func ComposeFromTimeOfDay(hour, minute int, ref time.Time) time.Time {
	y, m, d := ref.In(Location).Date()
	return time.Date(y, m, d, hour, minute, 0, 0, Location)
}

// WrapStop moves stop one day forward when it falls strictly before start,
// which is how a slot crossing midnight shows up in time-of-day schedules.
func WrapStop(start, stop time.Time) time.Time {
	if stop.Before(start) {
		return stop.AddDate(0, 0, 1)
	}
	return stop
}

// ParseTimestamp accepts ISO 8601 date-times with a "T" or space separator,
// with or without seconds. Without an offset the time is read as local time.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t.In(Location), nil
	}
	for _, layout := range zonedLayouts {
		if t, perr := time.Parse(layout, s); perr == nil {
			return t.In(Location), nil
		}
	}
	for _, layout := range localLayouts {
		if t, perr := time.ParseInLocation(layout, s, Location); perr == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
}
