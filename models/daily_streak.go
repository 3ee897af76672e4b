package models

import "time"

// StreakType identifies what kind of activity a streak counts.
type StreakType string

const (
	StreakPlayGame   StreakType = "play_game"
	StreakDailyLogin StreakType = "daily_login"
)

// Valid reports whether t is a known streak type.
func (t StreakType) Valid() bool {
	return t == StreakPlayGame || t == StreakDailyLogin
}

// DateLayout is the storage format of LastActivityDate.
const DateLayout = "2006-01-02"

// DailyStreak holds consecutive-day activity per user and streak type.
// LastActivityDate is a calendar date in the configured streak zone, stored as
// a string so the database's own timezone never shifts it.
type DailyStreak struct {
	UserID           uint       `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	StreakType       StreakType `gorm:"primaryKey;size:32" json:"streak_type"`
	CurrentStreak    int        `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak    int        `gorm:"not null;default:0" json:"longest_streak"`
	LastActivityDate string     `gorm:"size:10;not null" json:"last_activity_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// StreakResult describes what a single Update call did.
type StreakResult struct {
	CurrentStreak      int  `json:"current_streak"`
	LongestStreak      int  `json:"longest_streak"`
	Continued          bool `json:"streak_continued"`
	IsNew              bool `json:"is_new,omitempty"`
	AlreadyActiveToday bool `json:"already_active_today,omitempty"`
}

// StreakInfo is the read view of a streak.
type StreakInfo struct {
	StreakType       StreakType `json:"streak_type"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastActivityDate *string    `json:"last_activity_date"`
	PlayedToday      bool       `json:"played_today"`
}
