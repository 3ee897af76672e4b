package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/beatguess/models"
	"github.com/cppla/beatguess/utils"
)

// StreakService tracks consecutive active days per user and streak type.
// All day arithmetic happens in one pinned location.
type StreakService struct {
	db    *gorm.DB
	clock clockwork.Clock
	loc   *time.Location
}

// NewStreakService creates a StreakService. A nil location means UTC.
func NewStreakService(db *gorm.DB, clock clockwork.Clock, loc *time.Location) *StreakService {
	if loc == nil {
		loc = time.UTC
	}
	return &StreakService{db: db, clock: clock, loc: loc}
}

func (s *StreakService) today() string {
	return s.clock.Now().In(s.loc).Format(models.DateLayout)
}

// dayGap returns the number of calendar days from last to today. Both are
// DateLayout strings; parsing them as UTC midnights keeps DST out of the math.
func dayGap(last, today string) (int, error) {
	l, err := time.Parse(models.DateLayout, last)
	if err != nil {
		return 0, fmt.Errorf("parse last activity date %q: %w", last, err)
	}
	t, err := time.Parse(models.DateLayout, today)
	if err != nil {
		return 0, err
	}
	return int(t.Sub(l).Hours() / 24), nil
}

// Update records activity of the given type for today.
func (s *StreakService) Update(ctx context.Context, userID uint, streakType models.StreakType) (*models.StreakResult, error) {
	if !streakType.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"streak_type": "unknown streak type"}}
	}
	today := s.today()

	var result models.StreakResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		streak, found, err := lockStreak(tx, userID, streakType)
		if err != nil {
			return err
		}

		if !found {
			created := models.DailyStreak{
				UserID:           userID,
				StreakType:       streakType,
				CurrentStreak:    1,
				LongestStreak:    1,
				LastActivityDate: today,
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&created)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				result = models.StreakResult{CurrentStreak: 1, LongestStreak: 1, Continued: true, IsNew: true}
				return nil
			}
			// Another request created the row first; continue from its state.
			if streak, found, err = lockStreak(tx, userID, streakType); err != nil {
				return err
			} else if !found {
				return errors.New("streak row vanished after insert conflict")
			}
		}

		gap, err := dayGap(streak.LastActivityDate, today)
		if err != nil {
			return err
		}

		switch {
		case gap <= 0:
			// Already active today. A negative gap means the clock or zone moved
			// backwards; never shrink or inflate a streak because of it.
			result = models.StreakResult{
				CurrentStreak:      streak.CurrentStreak,
				LongestStreak:      streak.LongestStreak,
				AlreadyActiveToday: true,
			}
			return nil
		case gap == 1:
			streak.CurrentStreak++
			if streak.CurrentStreak > streak.LongestStreak {
				streak.LongestStreak = streak.CurrentStreak
			}
			result.Continued = true
		default:
			streak.CurrentStreak = 1
		}
		streak.LastActivityDate = today
		result.CurrentStreak = streak.CurrentStreak
		result.LongestStreak = streak.LongestStreak

		return tx.Model(&models.DailyStreak{}).
			Where("user_id = ? AND streak_type = ?", userID, streakType).
			Updates(map[string]interface{}{
				"current_streak":     streak.CurrentStreak,
				"longest_streak":     streak.LongestStreak,
				"last_activity_date": streak.LastActivityDate,
				"updated_at":         s.clock.Now(),
			}).Error
	})
	if err != nil {
		return nil, err
	}

	utils.Logger.Debug("streak updated",
		zap.Uint("user_id", userID),
		zap.String("streak_type", string(streakType)),
		zap.Int("current", result.CurrentStreak),
		zap.Bool("continued", result.Continued),
	)
	return &result, nil
}

func lockStreak(tx *gorm.DB, userID uint, streakType models.StreakType) (models.DailyStreak, bool, error) {
	var streak models.DailyStreak
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND streak_type = ?", userID, streakType).
		First(&streak).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return streak, false, nil
	}
	if err != nil {
		return streak, false, err
	}
	return streak, true, nil
}

// GetInfo returns the streak as stored. Users without activity get zero values.
func (s *StreakService) GetInfo(ctx context.Context, userID uint, streakType models.StreakType) (*models.StreakInfo, error) {
	if !streakType.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"streak_type": "unknown streak type"}}
	}
	info := &models.StreakInfo{StreakType: streakType}

	var streak models.DailyStreak
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND streak_type = ?", userID, streakType).
		First(&streak).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return info, nil
	}
	if err != nil {
		return nil, err
	}

	last := streak.LastActivityDate
	info.CurrentStreak = streak.CurrentStreak
	info.LongestStreak = streak.LongestStreak
	info.LastActivityDate = &last
	info.PlayedToday = last == s.today()
	return info, nil
}
