// Package engine holds the streak and life state machine. Everything here is
// a pure function over a previous State and a normalized reading day: no
// clock reads, no I/O. Persistence and idempotency live in the callers.
package engine

import (
	"errors"
	"time"

	"clubReadsAPI/internal/readingday"
	"clubReadsAPI/internal/types/streak"
)

// ErrInvalidDay rejects a reading registered for a day earlier than the
// user's last recorded day (clock skew, replay, backdating).
var ErrInvalidDay = errors.New("reading day precedes last recorded day")

type Config struct {
	InitialLives      int
	MaxLives          int
	MilestoneInterval int
}

// NewState builds the lazily created first-reading state: streak of one,
// the initial life budget, today as the last reading day.
func (c Config) NewState(userID string, today time.Time) *streak.State {
	day := today
	st := &streak.State{
		UserID:         userID,
		CurrentStreak:  1,
		LongestStreak:  1,
		Lives:          clamp(c.InitialLives, 0, c.MaxLives),
		LastReadingDay: &day,
	}
	c.applyMilestone(st)
	return st
}

// ZeroState is what a user with no reading history sees: no streak, the
// initial life budget, the first milestone ahead.
func (c Config) ZeroState(userID string) *streak.State {
	return &streak.State{
		UserID:        userID,
		Lives:         clamp(c.InitialLives, 0, c.MaxLives),
		NextMilestone: c.MilestoneInterval,
	}
}

// Advance computes the state after a new reading event lands on today.
// The caller guarantees the ledger accepted the event as the first one for
// (user, today); a duplicate day never reaches this function.
func (c Config) Advance(prev *streak.State, today time.Time) (*streak.State, error) {
	if prev == nil || prev.LastReadingDay == nil {
		st := c.NewState("", today)
		if prev != nil {
			st.UserID = prev.UserID
			st.Version = prev.Version
			st.CreatedAt = prev.CreatedAt
			if prev.LongestStreak > st.LongestStreak {
				st.LongestStreak = prev.LongestStreak
			}
		}
		return st, nil
	}

	gapDays := readingday.DaysBetween(*prev.LastReadingDay, today)
	if gapDays < 0 {
		return nil, ErrInvalidDay
	}

	next := prev.Clone()
	day := today
	next.LastReadingDay = &day

	switch {
	case gapDays <= 1:
		// Same day (ledger uniqueness already guards the increment) or the
		// very next day: the streak simply continues.
		next.CurrentStreak++
	case next.Lives >= gapDays-1:
		// Missed days are paid for with lives and the streak survives.
		next.Lives -= gapDays - 1
		next.CurrentStreak++
	default:
		// Not enough lives to cover the gap: today starts a new streak.
		next.CurrentStreak = 1
		next.Lives = 0
	}

	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	c.applyMilestone(next)
	return next, nil
}

// Project runs the lazy-decay view of the state as of today, with no new
// reading event. It never advances a streak. The second return value is true
// only when the streak is unrecoverably broken and the decayed state must be
// persisted; a survivable gap is reported with the owed lives already shown
// as consumed, but nothing is actually spent until a reading lands.
func (c Config) Project(prev *streak.State, today time.Time) (*streak.State, bool) {
	if prev == nil || prev.LastReadingDay == nil {
		userID := ""
		if prev != nil {
			userID = prev.UserID
		}
		return c.ZeroState(userID), false
	}

	gapDays := readingday.DaysBetween(*prev.LastReadingDay, today)
	owed := gapDays - 1
	if owed <= 0 {
		return prev.Clone(), false
	}

	next := prev.Clone()
	if owed <= next.Lives {
		next.Lives -= owed
		return next, false
	}

	// Even a reading today could not pay for the gap: the streak is gone
	// regardless of what the user does next, so the decay is committed.
	next.CurrentStreak = 0
	next.Lives = 0
	next.NextMilestone = c.MilestoneInterval
	return next, prev.CurrentStreak > 0 || prev.Lives > 0
}

// applyMilestone grants the bonus life when the streak lands exactly on a
// milestone and recomputes the next one.
func (c Config) applyMilestone(st *streak.State) {
	if c.MilestoneInterval <= 0 {
		return
	}
	if st.CurrentStreak > 0 && st.CurrentStreak%c.MilestoneInterval == 0 {
		st.Lives = clamp(st.Lives+1, 0, c.MaxLives)
		st.NextMilestone = st.CurrentStreak + c.MilestoneInterval
		return
	}
	st.NextMilestone = st.CurrentStreak + c.MilestoneInterval - st.CurrentStreak%c.MilestoneInterval
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
