package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/beatguess/models"
)

// StatisticsService owns the per-user aggregate counters.
type StatisticsService struct {
	db *gorm.DB
}

// NewStatisticsService creates a new StatisticsService.
func NewStatisticsService(db *gorm.DB) *StatisticsService {
	return &StatisticsService{db: db}
}

// gameDelta is what one finished game adds to a user's statistics.
type gameDelta struct {
	Rounds   int
	Correct  int
	Score    int
	Accuracy float64
	PlayedAt time.Time
}

// Get returns the user's statistics. A user who never played gets zero values.
func (s *StatisticsService) Get(ctx context.Context, userID uint) (*models.UserStatistics, error) {
	return loadStatistics(s.db.WithContext(ctx), userID, false)
}

func loadStatistics(tx *gorm.DB, userID uint, lock bool) (*models.UserStatistics, error) {
	q := tx
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var stats models.UserStatistics
	err := q.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserStatistics{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// apply folds one game into the user's row inside tx and returns the row as it
// was before the update. The row is seeded with an insert-or-ignore and then
// re-read under a row lock, so concurrent first games of one user serialize on
// the same row on MySQL, Postgres and SQLite alike.
func (s *StatisticsService) apply(tx *gorm.DB, userID uint, d gameDelta) (models.UserStatistics, error) {
	seed := models.UserStatistics{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return models.UserStatistics{}, err
	}

	var current models.UserStatistics
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&current).Error
	if err != nil {
		return models.UserStatistics{}, err
	}
	before := current

	current.TotalGamesPlayed++
	current.TotalRoundsPlayed += int64(d.Rounds)
	current.TotalCorrectAnswers += int64(d.Correct)
	current.TotalScore += int64(d.Score)
	if d.Score > current.BestScore {
		current.BestScore = d.Score
	}
	if d.Accuracy > current.BestAccuracy {
		current.BestAccuracy = d.Accuracy
	}
	playedAt := d.PlayedAt
	current.LastPlayedAt = &playedAt

	return before, tx.Save(&current).Error
}
