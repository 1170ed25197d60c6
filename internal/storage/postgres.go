package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clubReadsAPI/internal/types/reading"
	"clubReadsAPI/internal/types/streak"
)

type PostgresLedger struct {
	db *pgxpool.Pool
}

func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) TryRecord(ctx context.Context, ev *reading.Event) (bool, error) {
	query := `
        INSERT INTO reading_events (id, user_id, day, book, chapter, verse, points_earned, logged_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        ON CONFLICT (user_id, day) DO NOTHING
    `

	result, err := l.db.Exec(ctx, query, ev.ID, ev.UserID, ev.Day, ev.Book, ev.Chapter, ev.Verse, ev.PointsEarned)
	if err != nil {
		return false, fmt.Errorf("failed to record reading: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (l *PostgresLedger) History(ctx context.Context, userID string, limit int) ([]*reading.Event, error) {
	query := `
        SELECT id, user_id, day, book, chapter, verse, points_earned, logged_at
        FROM reading_events
        WHERE user_id = $1
        ORDER BY day DESC
        LIMIT $2
    `

	rows, err := l.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reading history: %w", err)
	}
	defer rows.Close()

	var events []*reading.Event
	for rows.Next() {
		ev := &reading.Event{}
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.Day, &ev.Book, &ev.Chapter, &ev.Verse, &ev.PointsEarned, &ev.LoggedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reading event: %w", err)
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

func (l *PostgresLedger) DaysRead(ctx context.Context, userID string, from, to time.Time) (map[string]bool, error) {
	query := `
        SELECT day
        FROM reading_events
        WHERE user_id = $1
            AND day >= $2
            AND day <= $3
        ORDER BY day
    `

	rows, err := l.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reading days: %w", err)
	}
	defer rows.Close()

	days := make(map[string]bool)
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan reading day: %w", err)
		}
		days[day.Format("2006-01-02")] = true
	}

	return days, rows.Err()
}

func (l *PostgresLedger) Totals(ctx context.Context, userID string) (int, int, error) {
	query := `
        SELECT COUNT(*), COALESCE(SUM(points_earned), 0)
        FROM reading_events
        WHERE user_id = $1
    `

	var days, points int
	if err := l.db.QueryRow(ctx, query, userID).Scan(&days, &points); err != nil {
		return 0, 0, fmt.Errorf("failed to fetch reading totals: %w", err)
	}

	return days, points, nil
}

type PostgresStreakStore struct {
	db *pgxpool.Pool
}

func NewPostgresStreakStore(db *pgxpool.Pool) *PostgresStreakStore {
	return &PostgresStreakStore{db: db}
}

func (s *PostgresStreakStore) Get(ctx context.Context, userID string) (*streak.State, error) {
	query := `
        SELECT user_id, current_streak, longest_streak, lives, last_reading_day, next_milestone, version, created_at, updated_at
        FROM streaks
        WHERE user_id = $1
    `

	st := &streak.State{}
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&st.UserID,
		&st.CurrentStreak,
		&st.LongestStreak,
		&st.Lives,
		&st.LastReadingDay,
		&st.NextMilestone,
		&st.Version,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get streak state: %w", err)
	}

	return st, nil
}

func (s *PostgresStreakStore) Create(ctx context.Context, st *streak.State) error {
	query := `
        INSERT INTO streaks (user_id, current_streak, longest_streak, lives, last_reading_day, next_milestone, version, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, 1, NOW(), NOW())
        ON CONFLICT (user_id) DO NOTHING
    `

	result, err := s.db.Exec(ctx, query, st.UserID, st.CurrentStreak, st.LongestStreak, st.Lives, st.LastReadingDay, st.NextMilestone)
	if err != nil {
		return fmt.Errorf("failed to create streak state: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrConflict
	}

	st.Version = 1
	return nil
}

func (s *PostgresStreakStore) Update(ctx context.Context, st *streak.State) error {
	query := `
        UPDATE streaks
        SET current_streak = $3,
            longest_streak = $4,
            lives = $5,
            last_reading_day = $6,
            next_milestone = $7,
            version = version + 1,
            updated_at = NOW()
        WHERE user_id = $1 AND version = $2
    `

	result, err := s.db.Exec(ctx, query, st.UserID, st.Version, st.CurrentStreak, st.LongestStreak, st.Lives, st.LastReadingDay, st.NextMilestone)
	if err != nil {
		return fmt.Errorf("failed to update streak state: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrConflict
	}

	st.Version++
	return nil
}
