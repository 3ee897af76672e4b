package models

import "time"

// ConditionType is the closed set of quantities an achievement can measure.
type ConditionType string

const (
	ConditionScore    ConditionType = "score"
	ConditionGames    ConditionType = "games"
	ConditionAccuracy ConditionType = "accuracy"
	ConditionStreak   ConditionType = "streak"
	ConditionRounds   ConditionType = "rounds"
)

// ThresholdType says whether a condition is checked against the game just
// played or against the user's running totals.
type ThresholdType string

const (
	ThresholdSingleGame ThresholdType = "single_game"
	ThresholdTotal      ThresholdType = "total"
)

// AchievementDefinition is a static catalog entry.
type AchievementDefinition struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	Code           string        `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Name           string        `gorm:"size:128;not null" json:"name"`
	Description    string        `gorm:"size:255" json:"description"`
	Icon           string        `gorm:"size:32" json:"icon"`
	ConditionType  ConditionType `gorm:"size:16;not null" json:"condition_type"`
	ThresholdType  ThresholdType `gorm:"size:16;not null" json:"threshold_type"`
	ThresholdValue float64       `gorm:"not null" json:"threshold_value"`
	Points         int           `gorm:"not null;default:0" json:"points"`
}

// TableName maps definitions onto the achievements table.
func (AchievementDefinition) TableName() string {
	return "achievements"
}

// UserAchievement records that a user earned an achievement. The unique index
// on (user_id, achievement_id) is what makes awarding safe under concurrency.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"uniqueIndex:idx_user_achievement,priority:1;not null" json:"user_id"`
	AchievementID uint      `gorm:"uniqueIndex:idx_user_achievement,priority:2;index;not null" json:"achievement_id"`
	EarnedAt      time.Time `gorm:"not null" json:"earned_at"`
}

// AchievementView is a definition plus the caller's standing against it.
type AchievementView struct {
	AchievementDefinition
	IsEarned           bool       `json:"is_earned"`
	EarnedAt           *time.Time `json:"earned_at,omitempty"`
	Progress           float64    `json:"progress"`
	ProgressPercentage float64    `json:"progress_percentage"`
}
