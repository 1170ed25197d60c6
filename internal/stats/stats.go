package stats

type ReadingStats struct {
	TodayStatus   bool `json:"today_status"`
	TotalDaysRead int  `json:"total_days_read" db:"total_days_read"`
	TotalPoints   int  `json:"total_points" db:"total_points"`
	CurrentStreak int  `json:"current_streak"`
	LongestStreak int  `json:"longest_streak"`
}
