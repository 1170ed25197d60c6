package readingday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStripsTime(t *testing.T) {
	ts := time.Date(2026, time.August, 30, 23, 59, 59, 0, time.UTC)
	day := Normalize(ts, time.UTC)

	assert.Equal(t, time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC), day)
}

func TestNormalizeSameLocalDayIdentical(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Sofia")
	require.NoError(t, err)

	morning := time.Date(2026, time.August, 30, 0, 5, 0, 0, loc)
	night := time.Date(2026, time.August, 30, 23, 55, 0, 0, loc)

	assert.True(t, Same(Normalize(morning, loc), Normalize(night, loc)))
}

func TestNormalizeTimezoneShiftsDayBoundary(t *testing.T) {
	// 01:00 UTC on the 30th is still the 29th in Los Angeles.
	ts := time.Date(2026, time.August, 30, 1, 0, 0, 0, time.UTC)

	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	assert.Equal(t, 30, Normalize(ts, time.UTC).Day())
	assert.Equal(t, 29, Normalize(ts, la).Day())
}

func TestNormalizeNilLocationDefaultsUTC(t *testing.T) {
	ts := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	assert.True(t, Same(Normalize(ts, nil), Normalize(ts, time.UTC)))
}

func TestNormalizeMonotonic(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	prev := Normalize(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), loc)
	for h := 1; h < 72; h++ {
		cur := Normalize(time.Date(2026, time.January, 1, h, 0, 0, 0, time.UTC), loc)
		assert.False(t, cur.Before(prev), "hour %d", h)
		prev = cur
	}
}

func TestDaysBetween(t *testing.T) {
	d1 := time.Date(2028, time.February, 27, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2028, time.March, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 4, DaysBetween(d1, d2), "2028 is a leap year")
	assert.Equal(t, -4, DaysBetween(d2, d1))
	assert.Equal(t, 0, DaysBetween(d1, d1))
}
