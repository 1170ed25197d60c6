package streak

import "time"

// State is the persisted per-user streak row. LastReadingDay is the most
// recent day a reading was recorded (or covered by spent lives); Version
// backs the store's compare-and-swap updates.
type State struct {
	UserID         string     `json:"user_id" db:"user_id"`
	CurrentStreak  int        `json:"current_streak" db:"current_streak"`
	LongestStreak  int        `json:"longest_streak" db:"longest_streak"`
	Lives          int        `json:"lives" db:"lives"`
	LastReadingDay *time.Time `json:"last_reading_day" db:"last_reading_day"`
	NextMilestone  int        `json:"next_milestone" db:"next_milestone"`
	Version        int64      `json:"-" db:"version"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Clone returns a copy safe to mutate without touching the original.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	if s.LastReadingDay != nil {
		day := *s.LastReadingDay
		out.LastReadingDay = &day
	}
	return &out
}

// Info is the streak payload returned to clients. It is the State plus the
// derived fields the app renders directly.
type Info struct {
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
	Lives          int     `json:"lives"`
	MaxLives       int     `json:"max_lives"`
	LastReadingDay *string `json:"last_reading_day"`
	HasReadToday   bool    `json:"has_read_today"`
	NextMilestone  int     `json:"next_milestone"`
	StreakActive   bool    `json:"streak_active"`
}
