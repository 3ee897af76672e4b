package models

import "time"

// UserStatistics is the per-user running aggregate. Counters never decrease
// and the best values are running maxima.
type UserStatistics struct {
	UserID              uint       `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	TotalGamesPlayed    int64      `gorm:"not null;default:0" json:"total_games_played"`
	TotalRoundsPlayed   int64      `gorm:"not null;default:0" json:"total_rounds_played"`
	TotalCorrectAnswers int64      `gorm:"not null;default:0" json:"total_correct_answers"`
	TotalScore          int64      `gorm:"not null;default:0" json:"total_score"`
	BestScore           int        `gorm:"not null;default:0" json:"best_score"`
	BestAccuracy        float64    `gorm:"not null;default:0" json:"best_accuracy"`
	LastPlayedAt        *time.Time `json:"last_played_at"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// TableName pins the table name; gorm would otherwise pluralise to user_statisticses.
func (UserStatistics) TableName() string {
	return "user_statistics"
}
