package models

import "time"

// LeaderboardEntry is an append-only snapshot of one completed session's score.
type LeaderboardEntry struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `gorm:"index;not null" json:"user_id"`
	SessionID          uint      `gorm:"uniqueIndex;not null" json:"session_id"`
	Score              int       `gorm:"index:idx_lb_mode_score,priority:2;not null" json:"score"`
	CorrectAnswers     int       `gorm:"not null" json:"correct_answers"`
	TotalRounds        int       `gorm:"not null" json:"total_rounds"`
	AccuracyPercentage float64   `gorm:"not null" json:"accuracy_percentage"`
	GameMode           string    `gorm:"size:64;index:idx_lb_mode_score,priority:1;not null" json:"game_mode"`
	AchievedAt         time.Time `gorm:"index;not null" json:"achieved_at"`
}

// TableName keeps the plural table name used by the rest of the schema.
func (LeaderboardEntry) TableName() string {
	return "leaderboards"
}

// LeaderboardView names one ordering of the leaderboard.
type LeaderboardView string

const (
	ViewTopScores LeaderboardView = "top_scores"
	ViewAccuracy  LeaderboardView = "accuracy"
	ViewRecent    LeaderboardView = "recent"
)

// Valid reports whether v is one of the known views.
func (v LeaderboardView) Valid() bool {
	switch v {
	case ViewTopScores, ViewAccuracy, ViewRecent:
		return true
	}
	return false
}

// LeaderboardRow is an entry decorated for a single returned page.
type LeaderboardRow struct {
	LeaderboardEntry
	Position        int    `json:"position"`
	PerformanceTier string `json:"performance_tier"`
}

// LeaderboardPage is the result of a leaderboard view query.
type LeaderboardPage struct {
	Entries      []LeaderboardRow `json:"entries"`
	TotalEntries int64            `json:"total_entries"`
	View         LeaderboardView  `json:"view"`
	GameMode     string           `json:"game_mode"`
}
