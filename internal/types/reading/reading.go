package reading

import (
	"time"

	"github.com/google/uuid"
)

// Event is one fact in the ledger: the user read the given passage on the
// given reading day. At most one event exists per (user, day); events are
// never mutated or deleted.
type Event struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Day          time.Time `json:"day" db:"day"`
	Book         string    `json:"book" db:"book"`
	Chapter      int       `json:"chapter" db:"chapter"`
	Verse        int       `json:"verse" db:"verse"`
	PointsEarned int       `json:"points_earned" db:"points_earned"`
	LoggedAt     time.Time `json:"logged_at" db:"logged_at"`
}

type RegisterRequest struct {
	Book         string     `json:"book"`
	Chapter      int        `json:"chapter"`
	Verse        int        `json:"verse"`
	PointsEarned int        `json:"points_earned"`
	OccurredAt   *time.Time `json:"occurred_at,omitempty"`
	// Timezone optionally overrides the configured reading-day boundary
	// with an IANA zone name, e.g. "Europe/Sofia".
	Timezone string `json:"timezone,omitempty"`
}

type HistoryResponse struct {
	Events []*Event `json:"events"`
}
