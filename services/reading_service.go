package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"clubReadsAPI/internal/config"
	"clubReadsAPI/internal/engine"
	"clubReadsAPI/internal/readingday"
	"clubReadsAPI/internal/stats"
	"clubReadsAPI/internal/storage"
	"clubReadsAPI/internal/types/calendar"
	"clubReadsAPI/internal/types/reading"
	"clubReadsAPI/internal/types/streak"
)

// ErrInvalidRequest marks client-side validation failures on a reading
// registration (missing book, bad chapter, unknown timezone).
var ErrInvalidRequest = errors.New("invalid reading request")

const conflictRetries = 3

var (
	readingsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "readings_registered_total",
		Help: "Total number of reading events recorded in the ledger",
	})
	livesSpent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streak_lives_spent_total",
		Help: "Total lives consumed to cover missed days",
	})
	streaksBroken = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streaks_broken_total",
		Help: "Total streak resets, on registration or lazy decay",
	})
	milestoneBonuses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streak_milestone_bonuses_total",
		Help: "Total bonus lives granted at streak milestones",
	})
)

type ReadingService struct {
	ledger     storage.Ledger
	streaks    storage.StreakStore
	engine     engine.Config
	defaultLoc *time.Location
	now        func() time.Time
}

func NewReadingService(ledger storage.Ledger, streaks storage.StreakStore, cfg *config.Config) *ReadingService {
	return &ReadingService{
		ledger:  ledger,
		streaks: streaks,
		engine: engine.Config{
			InitialLives:      cfg.InitialLives,
			MaxLives:          cfg.MaxLives,
			MilestoneInterval: cfg.MilestoneInterval,
		},
		defaultLoc: cfg.TimezoneLoc,
		now:        time.Now,
	}
}

// RegisterReading records one reading for the day occurredAt falls on and
// advances the user's streak. A second registration for the same day is an
// idempotent no-op. A day earlier than the user's last recorded day is
// rejected with engine.ErrInvalidDay.
func (s *ReadingService) RegisterReading(ctx context.Context, userID string, req *reading.RegisterRequest) (*streak.Info, error) {
	if err := validateRegisterRequest(req); err != nil {
		return nil, err
	}

	loc := s.defaultLoc
	if req.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(req.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidRequest, req.Timezone)
		}
	}

	occurred := s.now()
	if req.OccurredAt != nil {
		occurred = *req.OccurredAt
	}
	day := readingday.Normalize(occurred, loc)
	today := readingday.Normalize(s.now(), loc)

	st, err := s.getState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st != nil && st.LastReadingDay != nil && day.Before(*st.LastReadingDay) {
		return nil, engine.ErrInvalidDay
	}

	recorded, err := s.ledger.TryRecord(ctx, &reading.Event{
		ID:           uuid.New(),
		UserID:       userID,
		Day:          day,
		Book:         req.Book,
		Chapter:      req.Chapter,
		Verse:        req.Verse,
		PointsEarned: req.PointsEarned,
	})
	if err != nil {
		return nil, err
	}
	if !recorded {
		// Already registered for this day: streak state must not move.
		log.Printf("RegisterReading: duplicate for user %s day %s, no-op", userID, day.Format("2006-01-02"))
		if st == nil {
			return s.buildInfo(s.engine.ZeroState(userID), today), nil
		}
		return s.buildInfo(st, today), nil
	}
	readingsRegistered.Inc()

	for attempt := 0; ; attempt++ {
		next, err := s.engine.Advance(st, day)
		if err != nil {
			return nil, err
		}
		next.UserID = userID

		if st == nil {
			err = s.streaks.Create(ctx, next)
		} else {
			err = s.streaks.Update(ctx, next)
		}
		if err == nil {
			s.observeAdvance(st, next)
			return s.buildInfo(next, today), nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return nil, err
		}
		if attempt+1 >= conflictRetries {
			return nil, fmt.Errorf("failed to advance streak for user %s: %w", userID, err)
		}

		sleepWithJitter(attempt)
		if st, err = s.getState(ctx, userID); err != nil {
			return nil, err
		}
		if st != nil && st.LastReadingDay != nil && day.Before(*st.LastReadingDay) {
			// A concurrent writer moved the state past our day; the event
			// is in the ledger and the streak already accounts for it.
			return s.buildInfo(st, today), nil
		}
	}
}

// GetStreakInfo returns the user's streak as of today, running the lazy
// decay projection. The decayed state is committed only when the streak is
// unrecoverably broken; otherwise the store is left untouched.
func (s *ReadingService) GetStreakInfo(ctx context.Context, userID string) (*streak.Info, error) {
	today := readingday.Normalize(s.now(), s.defaultLoc)

	for attempt := 0; ; attempt++ {
		st, err := s.getState(ctx, userID)
		if err != nil {
			return nil, err
		}
		if st == nil {
			return s.buildInfo(s.engine.ZeroState(userID), today), nil
		}

		projected, persist := s.engine.Project(st, today)
		if !persist {
			return s.buildInfo(projected, today), nil
		}

		err = s.streaks.Update(ctx, projected)
		if err == nil {
			log.Printf("GetStreakInfo: streak decayed for user %s (was %d)", userID, st.CurrentStreak)
			streaksBroken.Inc()
			return s.buildInfo(projected, today), nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return nil, err
		}
		if attempt+1 >= conflictRetries {
			return nil, fmt.Errorf("failed to persist streak decay for user %s: %w", userID, err)
		}
		sleepWithJitter(attempt)
	}
}

// GetHistory returns the user's most recent reading events, newest first.
func (s *ReadingService) GetHistory(ctx context.Context, userID string, limit int) (*reading.HistoryResponse, error) {
	if limit <= 0 {
		limit = 30
	}
	if limit > 100 {
		limit = 100
	}

	events, err := s.ledger.History(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []*reading.Event{}
	}

	return &reading.HistoryResponse{Events: events}, nil
}

// GetCalendar returns the month grid of reading days.
func (s *ReadingService) GetCalendar(ctx context.Context, userID string, year int, month int) (*calendar.CalendarResponse, error) {
	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, -1)

	dayMap, err := s.ledger.DaysRead(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	today := readingday.Normalize(s.now(), s.defaultLoc).Format("2006-01-02")

	var days []*calendar.CalendarDay
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")
		days = append(days, &calendar.CalendarDay{
			Date:      d,
			ReadToday: dayMap[dateStr],
			IsToday:   dateStr == today,
		})
	}

	return &calendar.CalendarResponse{
		Year:  year,
		Month: month,
		Days:  days,
	}, nil
}

// GetStats returns all-time reading totals alongside the projected streak.
// The projection here is read-only even when the streak has lapsed; decay is
// committed on the streak endpoint, not on a stats view.
func (s *ReadingService) GetStats(ctx context.Context, userID string) (*stats.ReadingStats, error) {
	totalDays, totalPoints, err := s.ledger.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := readingday.Normalize(s.now(), s.defaultLoc)
	st, err := s.getState(ctx, userID)
	if err != nil {
		return nil, err
	}
	projected, _ := s.engine.Project(st, today)

	todayStatus := projected.LastReadingDay != nil && readingday.Same(*projected.LastReadingDay, today)

	return &stats.ReadingStats{
		TodayStatus:   todayStatus,
		TotalDaysRead: totalDays,
		TotalPoints:   totalPoints,
		CurrentStreak: projected.CurrentStreak,
		LongestStreak: projected.LongestStreak,
	}, nil
}

func (s *ReadingService) getState(ctx context.Context, userID string) (*streak.State, error) {
	st, err := s.streaks.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return st, nil
}

func (s *ReadingService) buildInfo(st *streak.State, today time.Time) *streak.Info {
	info := &streak.Info{
		CurrentStreak: st.CurrentStreak,
		LongestStreak: st.LongestStreak,
		Lives:         st.Lives,
		MaxLives:      s.engine.MaxLives,
		NextMilestone: st.NextMilestone,
		StreakActive:  st.CurrentStreak > 0,
	}
	if st.LastReadingDay != nil {
		day := st.LastReadingDay.Format("2006-01-02")
		info.LastReadingDay = &day
		info.HasReadToday = readingday.Same(*st.LastReadingDay, today)
	}
	return info
}

func (s *ReadingService) observeAdvance(prev, next *streak.State) {
	if prev != nil {
		if spent := prev.Lives - next.Lives; spent > 0 {
			livesSpent.Add(float64(spent))
		}
		if prev.CurrentStreak > 0 && next.CurrentStreak == 1 {
			streaksBroken.Inc()
		}
	}
	if s.engine.MilestoneInterval > 0 && next.CurrentStreak > 0 && next.CurrentStreak%s.engine.MilestoneInterval == 0 {
		milestoneBonuses.Inc()
	}
}

func validateRegisterRequest(req *reading.RegisterRequest) error {
	if req.Book == "" {
		return fmt.Errorf("%w: book is required", ErrInvalidRequest)
	}
	if req.Chapter < 1 {
		return fmt.Errorf("%w: chapter must be positive", ErrInvalidRequest)
	}
	if req.Verse < 1 {
		return fmt.Errorf("%w: verse must be positive", ErrInvalidRequest)
	}
	if req.PointsEarned < 0 {
		return fmt.Errorf("%w: points_earned cannot be negative", ErrInvalidRequest)
	}
	return nil
}

func sleepWithJitter(attempt int) {
	base := time.Duration(attempt+1) * 20 * time.Millisecond
	time.Sleep(base + time.Duration(rand.Intn(20))*time.Millisecond)
}
