package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"github.com/cppla/beatguess/models"
	"github.com/cppla/beatguess/utils"
)

// Options configures New.
type Options struct {
	DB             *gorm.DB
	Cache          *utils.Cache
	Clock          clockwork.Clock
	StreakLocation *time.Location
	LeaderboardTTL time.Duration
	// Achievements defaults to DefaultAchievements.
	Achievements []models.AchievementDefinition
}

// Services bundles the progression engine components.
type Services struct {
	Statistics   *StatisticsService
	Streaks      *StreakService
	Achievements *AchievementService
	Leaderboard  *LeaderboardService
	Sessions     *SessionService
	Submissions  *SubmissionService
}

// New validates and syncs the achievement catalog, then builds every service.
func New(ctx context.Context, opts Options) (*Services, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("services: nil database")
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	defs := opts.Achievements
	if defs == nil {
		defs = DefaultAchievements
	}

	catalog, err := NewCatalog(defs)
	if err != nil {
		return nil, err
	}
	if err := catalog.Sync(ctx, opts.DB); err != nil {
		return nil, err
	}

	stats := NewStatisticsService(opts.DB)
	streaks := NewStreakService(opts.DB, opts.Clock, opts.StreakLocation)
	achievements := NewAchievementService(opts.DB, catalog, opts.Clock)
	board := NewLeaderboardService(opts.DB, opts.Cache, opts.LeaderboardTTL)

	return &Services{
		Statistics:   stats,
		Streaks:      streaks,
		Achievements: achievements,
		Leaderboard:  board,
		Sessions:     NewSessionService(opts.DB),
		Submissions:  NewSubmissionService(opts.DB, stats, board, streaks, achievements, opts.Clock),
	}, nil
}
