// Package storage provides the reading ledger and the streak state store.
// Postgres backs both in production; the in-memory implementations exist for
// tests and share the same contracts.
package storage

import (
	"context"
	"errors"
	"time"

	"clubReadsAPI/internal/types/reading"
	"clubReadsAPI/internal/types/streak"
)

var (
	// ErrNotFound means no streak state exists for the user yet. Callers
	// resolve it to a zero-value state, it is not a failure.
	ErrNotFound = errors.New("streak state not found")

	// ErrConflict means a compare-and-swap update lost a race with a
	// concurrent writer. Safe to retry after re-reading the state.
	ErrConflict = errors.New("streak state version conflict")
)

// Ledger is the append-only record of completed readings, at most one per
// user per day.
type Ledger interface {
	// TryRecord appends the event unless one already exists for the same
	// (user, day). The bool reports whether this call recorded it; false
	// with a nil error is the idempotent no-op case.
	TryRecord(ctx context.Context, ev *reading.Event) (bool, error)

	// History returns the user's most recent events, newest first.
	History(ctx context.Context, userID string, limit int) ([]*reading.Event, error)

	// DaysRead reports which days in [from, to] have a recorded reading,
	// keyed by YYYY-MM-DD.
	DaysRead(ctx context.Context, userID string, from, to time.Time) (map[string]bool, error)

	// Totals returns the all-time count of reading days and points earned.
	Totals(ctx context.Context, userID string) (days int, points int, err error)
}

// StreakStore is the per-user durable streak state with atomic
// read-modify-write semantics.
type StreakStore interface {
	// Get returns the current state or ErrNotFound.
	Get(ctx context.Context, userID string) (*streak.State, error)

	// Create inserts the first state for a user. ErrConflict if a
	// concurrent writer created it first.
	Create(ctx context.Context, st *streak.State) error

	// Update commits st only if the stored version still matches
	// st.Version, bumping the version on success. ErrConflict otherwise.
	Update(ctx context.Context, st *streak.State) error
}
