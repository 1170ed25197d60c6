package readingday

import "time"

// Normalize converts a raw timestamp into the reading day it belongs to: the
// civil date in loc, stored as midnight UTC so day arithmetic and equality
// are exact regardless of the zone the timestamp arrived in.
func Normalize(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	year, month, day := t.In(loc).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole-day gap from one normalized day to another.
// Negative when 'to' is earlier than 'from'.
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

// Same reports whether two normalized days are the same calendar date.
func Same(a, b time.Time) bool {
	return a.Equal(b)
}
