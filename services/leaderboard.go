package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/beatguess/models"
	"github.com/cppla/beatguess/utils"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100

	// accuracyMinRounds drops low-sample games from the accuracy view.
	accuracyMinRounds = 5

	// Per-mode pages live under "mode:<slug>" so no slug can reach the
	// all-modes namespace.
	leaderboardCachePrefix = "cache:leaderboard:"
	allModesKey            = "all"
	modeKeyPrefix          = "mode:"
)

// LeaderboardService ranks leaderboard entries and serves cached views.
type LeaderboardService struct {
	db    *gorm.DB
	cache *utils.Cache
	ttl   time.Duration
}

// NewLeaderboardService creates a LeaderboardService. cache may be nil.
func NewLeaderboardService(db *gorm.DB, cache *utils.Cache, ttl time.Duration) *LeaderboardService {
	return &LeaderboardService{db: db, cache: cache, ttl: ttl}
}

// PerformanceTier buckets an accuracy percentage.
func PerformanceTier(accuracy float64) string {
	switch {
	case accuracy >= 90:
		return "excellent"
	case accuracy >= 70:
		return "good"
	default:
		return "average"
	}
}

// ClampLimit applies the default and the upper bound to a requested page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}

// Rank returns 1 + the number of entries in mode that beat the user's best there.
func (s *LeaderboardService) Rank(ctx context.Context, userID uint, mode string) (int64, error) {
	return rankTx(s.db.WithContext(ctx), userID, mode)
}

func rankTx(tx *gorm.DB, userID uint, mode string) (int64, error) {
	var best struct {
		Best *int
	}
	err := tx.Model(&models.LeaderboardEntry{}).
		Select("MAX(score) AS best").
		Where("user_id = ? AND game_mode = ?", userID, mode).
		Scan(&best).Error
	if err != nil {
		return 0, err
	}
	if best.Best == nil {
		return 0, &NotFoundError{Resource: "leaderboard entry", Key: fmt.Sprintf("user %d in %s", userID, mode)}
	}

	var higher int64
	err = tx.Model(&models.LeaderboardEntry{}).
		Where("game_mode = ? AND score > ?", mode, *best.Best).
		Count(&higher).Error
	if err != nil {
		return 0, err
	}
	return higher + 1, nil
}

func modeNamespace(mode string) string {
	if mode == "" {
		return leaderboardCachePrefix + allModesKey + ":"
	}
	return leaderboardCachePrefix + modeKeyPrefix + mode + ":"
}

func cacheKey(mode string, view models.LeaderboardView, limit int) string {
	return modeNamespace(mode) + string(view) + ":" + strconv.Itoa(limit)
}

// Board returns one page of the given view. An empty mode spans all modes.
func (s *LeaderboardService) Board(ctx context.Context, mode string, view models.LeaderboardView, limit int) (*models.LeaderboardPage, error) {
	if view == "" {
		view = models.ViewTopScores
	}
	if !view.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"view": "must be one of top_scores, accuracy, recent"}}
	}
	limit = ClampLimit(limit)

	key := cacheKey(mode, view, limit)
	var page models.LeaderboardPage
	if s.cache.GetJSON(ctx, key, &page) {
		return &page, nil
	}

	fresh, err := s.query(ctx, mode, view, limit)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, fresh, s.ttl)
	return fresh, nil
}

func (s *LeaderboardService) query(ctx context.Context, mode string, view models.LeaderboardView, limit int) (*models.LeaderboardPage, error) {
	q := s.db.WithContext(ctx).Model(&models.LeaderboardEntry{})
	if mode != "" {
		q = q.Where("game_mode = ?", mode)
	}
	if view == models.ViewAccuracy {
		q = q.Where("total_rounds >= ?", accuracyMinRounds)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	switch view {
	case models.ViewTopScores:
		q = q.Order("score DESC").Order("accuracy_percentage DESC").Order("achieved_at ASC")
	case models.ViewAccuracy:
		q = q.Order("accuracy_percentage DESC").Order("score DESC").Order("achieved_at ASC")
	case models.ViewRecent:
		q = q.Order("achieved_at DESC").Order("id DESC")
	}
	if view != models.ViewRecent {
		q = q.Order("id ASC")
	}

	var entries []models.LeaderboardEntry
	if err := q.Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}

	rows := make([]models.LeaderboardRow, len(entries))
	for i, e := range entries {
		rows[i] = models.LeaderboardRow{
			LeaderboardEntry: e,
			Position:         i + 1,
			PerformanceTier:  PerformanceTier(e.AccuracyPercentage),
		}
	}
	return &models.LeaderboardPage{Entries: rows, TotalEntries: total, View: view, GameMode: mode}, nil
}

// Invalidate drops cached pages for mode and for the all-modes board.
func (s *LeaderboardService) Invalidate(ctx context.Context, mode string) {
	s.cache.InvalidateByPrefix(ctx, modeNamespace(""))
	if mode != "" {
		s.cache.InvalidateByPrefix(ctx, modeNamespace(mode))
	}
}

// GameModes lists every mode that has at least one entry.
func (s *LeaderboardService) GameModes(ctx context.Context) ([]string, error) {
	var modes []string
	err := s.db.WithContext(ctx).Model(&models.LeaderboardEntry{}).
		Distinct("game_mode").Order("game_mode").Pluck("game_mode", &modes).Error
	return modes, err
}

// Warm recomputes the default top_scores page for every mode and the
// all-modes board, overwriting whatever is cached.
func (s *LeaderboardService) Warm(ctx context.Context) error {
	modes, err := s.GameModes(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, mode := range append([]string{""}, modes...) {
		page, err := s.query(ctx, mode, models.ViewTopScores, DefaultLeaderboardLimit)
		if err != nil {
			errs = append(errs, fmt.Errorf("warm %q: %w", mode, err))
			continue
		}
		s.cache.SetJSON(ctx, cacheKey(mode, models.ViewTopScores, DefaultLeaderboardLimit), page, s.ttl)
	}
	return errors.Join(errs...)
}
