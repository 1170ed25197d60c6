package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"clubReadsAPI/internal/types/reading"
	"clubReadsAPI/internal/types/streak"
)

// MemoryLedger is an in-memory Ledger for tests. Events are keyed by
// (userID, day) exactly like the Postgres unique constraint.
type MemoryLedger struct {
	mu     sync.Mutex
	events map[string]map[string]*reading.Event
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{events: make(map[string]map[string]*reading.Event)}
}

func dayKey(day time.Time) string {
	return day.Format("2006-01-02")
}

func (l *MemoryLedger) TryRecord(_ context.Context, ev *reading.Event) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	byDay, ok := l.events[ev.UserID]
	if !ok {
		byDay = make(map[string]*reading.Event)
		l.events[ev.UserID] = byDay
	}

	key := dayKey(ev.Day)
	if _, exists := byDay[key]; exists {
		return false, nil
	}

	stored := *ev
	stored.LoggedAt = time.Now()
	byDay[key] = &stored
	return true, nil
}

func (l *MemoryLedger) History(_ context.Context, userID string, limit int) ([]*reading.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var events []*reading.Event
	for _, ev := range l.events[userID] {
		copied := *ev
		events = append(events, &copied)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Day.After(events[j].Day) })

	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (l *MemoryLedger) DaysRead(_ context.Context, userID string, from, to time.Time) (map[string]bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	days := make(map[string]bool)
	for key, ev := range l.events[userID] {
		if !ev.Day.Before(from) && !ev.Day.After(to) {
			days[key] = true
		}
	}
	return days, nil
}

func (l *MemoryLedger) Totals(_ context.Context, userID string) (int, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	days, points := 0, 0
	for _, ev := range l.events[userID] {
		days++
		points += ev.PointsEarned
	}
	return days, points, nil
}

// MemoryStreakStore is an in-memory StreakStore for tests, with the same
// version-checked update semantics as the Postgres store.
type MemoryStreakStore struct {
	mu     sync.Mutex
	states map[string]*streak.State
}

func NewMemoryStreakStore() *MemoryStreakStore {
	return &MemoryStreakStore{states: make(map[string]*streak.State)}
}

func (s *MemoryStreakStore) Get(_ context.Context, userID string) (*streak.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return st.Clone(), nil
}

func (s *MemoryStreakStore) Create(_ context.Context, st *streak.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.states[st.UserID]; exists {
		return ErrConflict
	}

	stored := st.Clone()
	stored.Version = 1
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	s.states[st.UserID] = stored

	st.Version = 1
	return nil
}

func (s *MemoryStreakStore) Update(_ context.Context, st *streak.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.states[st.UserID]
	if !ok || current.Version != st.Version {
		return ErrConflict
	}

	stored := st.Clone()
	stored.Version = current.Version + 1
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = time.Now()
	s.states[st.UserID] = stored

	st.Version = stored.Version
	return nil
}
