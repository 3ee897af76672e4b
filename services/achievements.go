package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/beatguess/models"
	"github.com/cppla/beatguess/utils"
)

// AchievementService evaluates the catalog against a user's totals and awards
// each achievement at most once.
type AchievementService struct {
	db      *gorm.DB
	catalog *Catalog
	clock   clockwork.Clock
}

// NewAchievementService creates an AchievementService over a synced catalog.
func NewAchievementService(db *gorm.DB, catalog *Catalog, clock clockwork.Clock) *AchievementService {
	return &AchievementService{db: db, catalog: catalog, clock: clock}
}

// Catalog returns the definitions the service evaluates.
func (s *AchievementService) Catalog() []models.AchievementDefinition {
	return s.catalog.Definitions()
}

// Definition returns one catalog entry. Codes are matched case-insensitively.
func (s *AchievementService) Definition(code string) (models.AchievementDefinition, error) {
	return s.catalog.ByCode(strings.ToUpper(strings.TrimSpace(code)))
}

// totals is the cumulative state an achievement can be measured against.
type totals struct {
	stats         models.UserStatistics
	currentStreak int
}

func (s *AchievementService) loadTotals(db *gorm.DB, userID uint) (totals, error) {
	stats, err := loadStatistics(db, userID, false)
	if err != nil {
		return totals{}, err
	}
	var streak models.DailyStreak
	res := db.Where("user_id = ? AND streak_type = ?", userID, models.StreakPlayGame).Limit(1).Find(&streak)
	if res.Error != nil {
		return totals{}, res.Error
	}
	return totals{stats: *stats, currentStreak: streak.CurrentStreak}, nil
}

// measure returns the left-hand side of d's predicate after a game.
func measure(d models.AchievementDefinition, t totals, snap models.GameSnapshot) float64 {
	single := d.ThresholdType == models.ThresholdSingleGame
	switch d.ConditionType {
	case models.ConditionScore:
		if single {
			return float64(snap.Score)
		}
		return float64(t.stats.TotalScore)
	case models.ConditionGames:
		return float64(t.stats.TotalGamesPlayed)
	case models.ConditionAccuracy:
		if single {
			return snap.Accuracy
		}
		return t.stats.BestAccuracy
	case models.ConditionStreak:
		return float64(max(t.currentStreak, snap.CurrentStreak))
	case models.ConditionRounds:
		if single {
			return float64(snap.TotalRounds)
		}
		return float64(t.stats.TotalRoundsPlayed)
	}
	return 0
}

// progressMeasure is measure without a game in hand: single-game conditions
// fall back to the user's best so far.
func progressMeasure(d models.AchievementDefinition, t totals) float64 {
	single := d.ThresholdType == models.ThresholdSingleGame
	switch d.ConditionType {
	case models.ConditionScore:
		if single {
			return float64(t.stats.BestScore)
		}
		return float64(t.stats.TotalScore)
	case models.ConditionGames:
		return float64(t.stats.TotalGamesPlayed)
	case models.ConditionAccuracy:
		return t.stats.BestAccuracy
	case models.ConditionStreak:
		return float64(t.currentStreak)
	case models.ConditionRounds:
		return float64(t.stats.TotalRoundsPlayed)
	}
	return 0
}

func ownedAchievements(db *gorm.DB, userID uint) (map[uint]time.Time, error) {
	var rows []models.UserAchievement
	if err := db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	owned := make(map[uint]time.Time, len(rows))
	for _, r := range rows {
		owned[r.AchievementID] = r.EarnedAt
	}
	return owned, nil
}

// awardOnce inserts the (user, achievement) pair unless it already exists.
// The unique index decides concurrent races; the loser sees created=false.
func awardOnce(db *gorm.DB, userID, achievementID uint, at time.Time) (bool, error) {
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		EarnedAt:      at,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Evaluate awards every satisfied achievement the user does not own yet and
// returns only those created by this call.
func (s *AchievementService) Evaluate(ctx context.Context, userID uint, snap models.GameSnapshot) ([]models.AchievementView, error) {
	db := s.db.WithContext(ctx)
	t, err := s.loadTotals(db, userID)
	if err != nil {
		return nil, err
	}
	owned, err := ownedAchievements(db, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	awarded := make([]models.AchievementView, 0)
	for _, d := range s.catalog.Definitions() {
		if _, ok := owned[d.ID]; ok {
			continue
		}
		value := measure(d, t, snap)
		if value < d.ThresholdValue {
			continue
		}
		created, err := awardOnce(db, userID, d.ID, now)
		if err != nil {
			return awarded, err
		}
		if !created {
			utils.Logger.Debug("achievement already awarded concurrently",
				zap.Uint("user_id", userID), zap.String("code", d.Code))
			continue
		}
		earnedAt := now
		awarded = append(awarded, models.AchievementView{
			AchievementDefinition: d,
			IsEarned:              true,
			EarnedAt:              &earnedAt,
			Progress:              value,
			ProgressPercentage:    100,
		})
	}

	if len(awarded) > 0 {
		utils.Logger.Info("achievements awarded", zap.Uint("user_id", userID), zap.Int("count", len(awarded)))
	}
	return awarded, nil
}

// Progress lists the whole catalog with the user's standing on each entry.
func (s *AchievementService) Progress(ctx context.Context, userID uint) ([]models.AchievementView, error) {
	db := s.db.WithContext(ctx)
	t, err := s.loadTotals(db, userID)
	if err != nil {
		return nil, err
	}
	owned, err := ownedAchievements(db, userID)
	if err != nil {
		return nil, err
	}

	defs := s.catalog.Definitions()
	views := make([]models.AchievementView, 0, len(defs))
	for _, d := range defs {
		v := models.AchievementView{AchievementDefinition: d, Progress: progressMeasure(d, t)}
		if earnedAt, ok := owned[d.ID]; ok {
			v.IsEarned = true
			v.EarnedAt = &earnedAt
			v.ProgressPercentage = 100
		} else {
			v.ProgressPercentage = progressPercentage(v.Progress, d.ThresholdValue)
		}
		views = append(views, v)
	}
	return views, nil
}

// progressPercentage relies on NewCatalog rejecting non-positive thresholds.
func progressPercentage(progress, threshold float64) float64 {
	pct := 100 * progress / threshold
	if pct > 100 {
		pct = 100
	}
	return math.Round(pct*100) / 100
}
