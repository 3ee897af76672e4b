package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gosimple/slug"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/beatguess/models"
	"github.com/cppla/beatguess/utils"
)

const (
	maxGameModeLength       = 64
	maxIdempotencyKeyLength = 128
)

//go:generate mockgen -destination=mock/mock_services.go -package=mock github.com/cppla/beatguess/services StreakTracker,AchievementAwarder

// StreakTracker is the streak collaborator of the submission coordinator.
type StreakTracker interface {
	Update(ctx context.Context, userID uint, streakType models.StreakType) (*models.StreakResult, error)
	GetInfo(ctx context.Context, userID uint, streakType models.StreakType) (*models.StreakInfo, error)
}

// AchievementAwarder is the achievement collaborator of the submission coordinator.
type AchievementAwarder interface {
	Evaluate(ctx context.Context, userID uint, snap models.GameSnapshot) ([]models.AchievementView, error)
}

// SubmissionService persists finished games and triggers their secondary effects.
type SubmissionService struct {
	db      *gorm.DB
	stats   *StatisticsService
	board   *LeaderboardService
	streaks StreakTracker
	awards  AchievementAwarder
	clock   clockwork.Clock
}

// NewSubmissionService wires the coordinator to its collaborators.
func NewSubmissionService(db *gorm.DB, stats *StatisticsService, board *LeaderboardService,
	streaks StreakTracker, awards AchievementAwarder, clock clockwork.Clock) *SubmissionService {
	return &SubmissionService{
		db:      db,
		stats:   stats,
		board:   board,
		streaks: streaks,
		awards:  awards,
		clock:   clock,
	}
}

// NormalizeGameMode lowercases and slugs a game mode ("Speed Round" -> "speed-round").
func NormalizeGameMode(mode string) string {
	return slug.Make(strings.TrimSpace(mode))
}

// validateSubmission checks every bound before storage is touched and returns
// the normalised game mode and idempotency key.
func validateSubmission(userID uint, sub models.ScoreSubmission) (string, string, error) {
	verr := &ValidationError{}
	if userID == 0 {
		verr.add("user_id", "must be an authenticated user")
	}
	if sub.TotalRounds <= 0 {
		verr.add("total_rounds", "must be greater than 0")
	}
	if sub.CorrectAnswers < 0 {
		verr.add("correct_answers", "must not be negative")
	} else if sub.TotalRounds > 0 && sub.CorrectAnswers > sub.TotalRounds {
		verr.add("correct_answers", "must not exceed total_rounds")
	}
	if sub.Score < 0 {
		verr.add("score", "must not be negative")
	}

	mode := NormalizeGameMode(sub.GameMode)
	switch {
	case mode == "":
		verr.add("game_mode", "must not be empty")
	case len(mode) > maxGameModeLength:
		verr.add("game_mode", fmt.Sprintf("must be at most %d characters", maxGameModeLength))
	}

	key := strings.TrimSpace(sub.IdempotencyKey)
	if len(key) > maxIdempotencyKeyLength {
		verr.add("idempotency_key", fmt.Sprintf("must be at most %d characters", maxIdempotencyKeyLength))
	}

	if len(sub.Rounds) > 0 {
		if sub.TotalRounds > 0 && len(sub.Rounds) != sub.TotalRounds {
			verr.add("rounds", "count must equal total_rounds")
		}
		seen := make(map[int]bool, len(sub.Rounds))
		for i, r := range sub.Rounds {
			field := fmt.Sprintf("rounds[%d]", i)
			n := r.RoundNumber
			if n == 0 {
				n = i + 1
			}
			if n < 1 || (sub.TotalRounds > 0 && n > sub.TotalRounds) {
				verr.add(field+".round_number", "out of range")
			} else if seen[n] {
				verr.add(field+".round_number", "duplicate")
			}
			seen[n] = true
			if r.TimeTakenMs < 0 {
				verr.add(field+".time_taken_ms", "must not be negative")
			}
			if r.PointsEarned < 0 {
				verr.add(field+".points_earned", "must not be negative")
			}
		}
	}
	return mode, key, verr.orNil()
}

// accuracyOf returns correct/total as a percentage rounded to two decimals.
func accuracyOf(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*10000) / 100
}

func roundRow(sessionID uint, i int, r models.RoundInput) models.GameRound {
	n := r.RoundNumber
	if n == 0 {
		n = i + 1
	}
	return models.GameRound{
		SessionID:    sessionID,
		RoundNumber:  n,
		TrackID:      utils.StripMarkup(r.TrackID),
		TrackTitle:   utils.StripMarkup(r.TrackTitle),
		TrackArtist:  utils.StripMarkup(r.TrackArtist),
		TrackAlbum:   utils.StripMarkup(r.TrackAlbum),
		PreviewURL:   strings.TrimSpace(r.PreviewURL),
		UserGuess:    utils.StripMarkup(r.UserGuess),
		IsCorrect:    r.IsCorrect,
		TimeTakenMs:  r.TimeTakenMs,
		PointsEarned: r.PointsEarned,
	}
}

// Submit validates and persists a finished game in one transaction, then
// advances the play streak and evaluates achievements. Failures of those two
// steps are logged and reported through the *_degraded flags.
func (s *SubmissionService) Submit(ctx context.Context, userID uint, sub models.ScoreSubmission) (*models.SubmitResult, error) {
	mode, key, err := validateSubmission(userID, sub)
	if err != nil {
		return nil, err
	}

	if key != "" {
		existing, err := s.findByKey(ctx, userID, key)
		if err != nil {
			return nil, &PersistenceError{Op: "lookup idempotency key", Err: err}
		}
		if existing != nil {
			return s.replay(ctx, existing)
		}
	}

	now := s.clock.Now()
	accuracy := accuracyOf(sub.CorrectAnswers, sub.TotalRounds)
	session := models.GameSession{
		UserID:         userID,
		StartedAt:      now,
		EndedAt:        &now,
		TotalRounds:    sub.TotalRounds,
		CorrectAnswers: sub.CorrectAnswers,
		Score:          sub.Score,
		GameMode:       mode,
		Status:         models.SessionCompleted,
		CreatedAt:      now,
	}
	if key != "" {
		session.IdempotencyKey = &key
	}

	var before models.UserStatistics
	var position int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return &PersistenceError{Op: "insert session", Err: err}
		}
		for i, r := range sub.Rounds {
			round := roundRow(session.ID, i, r)
			round.CreatedAt = now
			if err := tx.Create(&round).Error; err != nil {
				return &PersistenceError{Op: fmt.Sprintf("insert round %d", round.RoundNumber), Err: err}
			}
		}
		entry := models.LeaderboardEntry{
			UserID:             userID,
			SessionID:          session.ID,
			Score:              sub.Score,
			CorrectAnswers:     sub.CorrectAnswers,
			TotalRounds:        sub.TotalRounds,
			AccuracyPercentage: accuracy,
			GameMode:           mode,
			AchievedAt:         now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return &PersistenceError{Op: "insert leaderboard entry", Err: err}
		}
		var err error
		before, err = s.stats.apply(tx, userID, gameDelta{
			Rounds:   sub.TotalRounds,
			Correct:  sub.CorrectAnswers,
			Score:    sub.Score,
			Accuracy: accuracy,
			PlayedAt: now,
		})
		if err != nil {
			return &PersistenceError{Op: "upsert statistics", Err: err}
		}
		if position, err = rankTx(tx, userID, mode); err != nil {
			return &PersistenceError{Op: "rank", Err: err}
		}
		return nil
	})
	if err != nil {
		if key != "" && errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent request with the same key committed first.
			if existing, lookupErr := s.findByKey(ctx, userID, key); lookupErr == nil && existing != nil {
				return s.replay(ctx, existing)
			}
		}
		var perr *PersistenceError
		if !errors.As(err, &perr) {
			perr = &PersistenceError{Op: "commit", Err: err}
		}
		utils.Logger.Error("score submission failed", zap.Uint("user_id", userID), zap.Error(perr))
		return nil, perr
	}

	result := &models.SubmitResult{
		SessionID:           session.ID,
		LeaderboardPosition: position,
		PersonalBest:        before.TotalGamesPlayed == 0 || sub.Score >= before.BestScore,
		NewAchievements:     []models.AchievementView{},
	}
	utils.Logger.Info("score submitted",
		zap.Uint("user_id", userID),
		zap.Uint("session_id", session.ID),
		zap.String("game_mode", mode),
		zap.Int("score", sub.Score),
		zap.Int64("position", position),
	)

	// The score is durable from here on; a cancelled request must not skip
	// the secondary effects.
	effects := context.WithoutCancel(ctx)
	s.board.Invalidate(effects, mode)

	streak, err := s.streaks.Update(effects, userID, models.StreakPlayGame)
	if err != nil {
		logSecondary(userID, session.ID, &SecondaryEffectError{Effect: "streak", Err: err})
		result.StreakDegraded = true
	} else {
		result.Streak = models.StreakSummary{
			CurrentStreak:   streak.CurrentStreak,
			LongestStreak:   streak.LongestStreak,
			StreakContinued: streak.Continued,
		}
	}

	awarded, err := s.awards.Evaluate(effects, userID, models.GameSnapshot{
		Score:          sub.Score,
		Accuracy:       accuracy,
		TotalRounds:    sub.TotalRounds,
		CorrectAnswers: sub.CorrectAnswers,
		CurrentStreak:  result.Streak.CurrentStreak,
	})
	if err != nil {
		logSecondary(userID, session.ID, &SecondaryEffectError{Effect: "achievements", Err: err})
		result.AchievementsDegraded = true
	}
	if len(awarded) > 0 {
		result.NewAchievements = awarded
	}
	result.AchievementCount = len(result.NewAchievements)
	return result, nil
}

func logSecondary(userID, sessionID uint, err *SecondaryEffectError) {
	utils.Logger.Warn("secondary effect degraded",
		zap.Uint("user_id", userID),
		zap.Uint("session_id", sessionID),
		zap.String("effect", err.Effect),
		zap.Error(err),
	)
}

func (s *SubmissionService) findByKey(ctx context.Context, userID uint, key string) (*models.GameSession, error) {
	var session models.GameSession
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		Limit(1).Find(&session)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &session, nil
}

// replay answers a repeated submission from stored data without writing.
func (s *SubmissionService) replay(ctx context.Context, session *models.GameSession) (*models.SubmitResult, error) {
	db := s.db.WithContext(ctx)
	position, err := rankTx(db, session.UserID, session.GameMode)
	if err != nil {
		return nil, &PersistenceError{Op: "rank", Err: err}
	}
	stats, err := loadStatistics(db, session.UserID, false)
	if err != nil {
		return nil, &PersistenceError{Op: "load statistics", Err: err}
	}

	result := &models.SubmitResult{
		SessionID:           session.ID,
		LeaderboardPosition: position,
		PersonalBest:        session.Score >= stats.BestScore,
		NewAchievements:     []models.AchievementView{},
		Replayed:            true,
	}
	info, err := s.streaks.GetInfo(ctx, session.UserID, models.StreakPlayGame)
	if err != nil {
		logSecondary(session.UserID, session.ID, &SecondaryEffectError{Effect: "streak", Err: err})
		result.StreakDegraded = true
	} else {
		result.Streak = models.StreakSummary{CurrentStreak: info.CurrentStreak, LongestStreak: info.LongestStreak}
	}

	utils.Logger.Info("score submission replayed",
		zap.Uint("user_id", session.UserID), zap.Uint("session_id", session.ID))
	return result, nil
}
