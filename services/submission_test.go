package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"

	"github.com/cppla/beatguess/models"
	"github.com/cppla/beatguess/services/mock"
	"github.com/cppla/beatguess/testutil"
)

func TestSubmit_FirstGameExample(t *testing.T) {
	f := newFixture(t)

	res := f.submit(t, 42, game(700, 7, 10, "standard"))

	assert.NotZero(t, res.SessionID)
	assert.EqualValues(t, 1, res.LeaderboardPosition)
	assert.True(t, res.PersonalBest)
	assert.Equal(t, models.StreakSummary{CurrentStreak: 1, LongestStreak: 1, StreakContinued: true}, res.Streak)
	assert.False(t, res.StreakDegraded)
	assert.False(t, res.AchievementsDegraded)
	assert.ElementsMatch(t, []string{"FIRST_GAME", "SCORE_500"}, codes(res.NewAchievements))
	assert.Equal(t, 2, res.AchievementCount)
	for _, a := range res.NewAchievements {
		assert.True(t, a.IsEarned)
		assert.NotEmpty(t, a.Name)
	}

	var session models.GameSession
	require.NoError(t, f.db.Preload("Rounds").First(&session, res.SessionID).Error)
	assert.Equal(t, models.SessionCompleted, session.Status)
	assert.Len(t, session.Rounds, session.TotalRounds)
	assert.EqualValues(t, 1, count(t, f.db, &models.LeaderboardEntry{}))

	var entry models.LeaderboardEntry
	require.NoError(t, f.db.First(&entry).Error)
	assert.InDelta(t, 70.0, entry.AccuracyPercentage, 0.001)
}

func TestSubmit_StatisticsAccumulate(t *testing.T) {
	f := newFixture(t)
	scores := []int{120, 450, 300, 90}
	for _, s := range scores {
		f.submit(t, 7, game(s, 4, 5, "standard"))
	}

	stats, err := f.svc.Statistics.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.EqualValues(t, len(scores), stats.TotalGamesPlayed)
	assert.Equal(t, 450, stats.BestScore)
	assert.EqualValues(t, 960, stats.TotalScore)
	assert.EqualValues(t, 20, stats.TotalRoundsPlayed)
	assert.EqualValues(t, 16, stats.TotalCorrectAnswers)
	assert.InDelta(t, 80.0, stats.BestAccuracy, 0.001)
	require.NotNil(t, stats.LastPlayedAt)
}

func TestSubmit_BestScoreAfterImprovement(t *testing.T) {
	f := newFixture(t)
	f.submit(t, 1, game(500, 5, 10, "standard"))
	res := f.submit(t, 1, game(800, 8, 10, "standard"))
	assert.True(t, res.PersonalBest)

	stats, err := f.svc.Statistics.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 800, stats.BestScore)
	assert.EqualValues(t, 2, stats.TotalGamesPlayed)
}

func TestSubmit_PersonalBestTieCounts(t *testing.T) {
	f := newFixture(t)

	assert.True(t, f.submit(t, 1, game(500, 5, 10, "standard")).PersonalBest)
	assert.True(t, f.submit(t, 1, game(500, 5, 10, "blitz")).PersonalBest, "a tie is a personal best")
	assert.False(t, f.submit(t, 1, game(499, 5, 10, "standard")).PersonalBest)
}

func TestSubmit_PositionsWithTies(t *testing.T) {
	f := newFixture(t)

	p1 := f.submit(t, 1, game(300, 3, 5, "standard")).LeaderboardPosition
	p2 := f.submit(t, 2, game(300, 3, 5, "standard")).LeaderboardPosition
	p3 := f.submit(t, 3, game(200, 2, 5, "standard")).LeaderboardPosition
	assert.Equal(t, []int64{1, 1, 3}, []int64{p1, p2, p3})

	// Another mode does not affect ranking in "standard".
	f.submit(t, 4, game(900, 5, 5, "blitz"))
	for user, want := range map[uint]int64{1: 1, 2: 1, 3: 3} {
		got, err := f.svc.Leaderboard.Rank(context.Background(), user, "standard")
		require.NoError(t, err)
		assert.Equal(t, want, got, "user %d", user)
	}
}

func TestSubmit_StreakAcrossDays(t *testing.T) {
	f := newFixture(t)

	var got []int
	got = append(got, f.submit(t, 5, game(100, 1, 5, "standard")).Streak.CurrentStreak)
	f.clock.Advance(24 * time.Hour)
	got = append(got, f.submit(t, 5, game(100, 1, 5, "standard")).Streak.CurrentStreak)
	f.clock.Advance(48 * time.Hour)
	res := f.submit(t, 5, game(100, 1, 5, "standard"))
	got = append(got, res.Streak.CurrentStreak)

	assert.Equal(t, []int{1, 2, 1}, got)
	assert.Equal(t, 2, res.Streak.LongestStreak)
	assert.False(t, res.Streak.StreakContinued)
}

func TestSubmit_RoundFailureRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("disk full")
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_round_6", func(tx *gorm.DB) {
		if r, ok := tx.Statement.Dest.(*models.GameRound); ok && r.RoundNumber == 6 {
			_ = tx.AddError(boom)
		}
	}))

	res, err := f.svc.Submissions.Submit(context.Background(), 9, game(600, 6, 10, "standard"))
	require.Error(t, err)
	assert.Nil(t, res)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.Retryable())
	assert.ErrorIs(t, err, boom)

	assert.Zero(t, count(t, f.db, &models.GameSession{}))
	assert.Zero(t, count(t, f.db, &models.GameRound{}))
	assert.Zero(t, count(t, f.db, &models.LeaderboardEntry{}))
	assert.Zero(t, count(t, f.db, &models.UserStatistics{}))
	assert.Zero(t, count(t, f.db, &models.DailyStreak{}))
	assert.Zero(t, count(t, f.db, &models.UserAchievement{}))
}

func TestSubmit_Validation(t *testing.T) {
	valid := game(100, 1, 5, "standard")
	tests := []struct {
		name   string
		userID uint
		mutate func(s *models.ScoreSubmission)
		field  string
	}{
		{name: "anonymous", userID: 0, mutate: func(s *models.ScoreSubmission) {}, field: "user_id"},
		{name: "zero rounds", userID: 1, mutate: func(s *models.ScoreSubmission) { s.TotalRounds = 0; s.Rounds = nil }, field: "total_rounds"},
		{name: "negative correct", userID: 1, mutate: func(s *models.ScoreSubmission) { s.CorrectAnswers = -1 }, field: "correct_answers"},
		{name: "too many correct", userID: 1, mutate: func(s *models.ScoreSubmission) { s.CorrectAnswers = 6 }, field: "correct_answers"},
		{name: "negative score", userID: 1, mutate: func(s *models.ScoreSubmission) { s.Score = -10 }, field: "score"},
		{name: "blank mode", userID: 1, mutate: func(s *models.ScoreSubmission) { s.GameMode = "  " }, field: "game_mode"},
		{name: "round count mismatch", userID: 1, mutate: func(s *models.ScoreSubmission) { s.Rounds = s.Rounds[:3] }, field: "rounds"},
		{name: "round out of range", userID: 1, mutate: func(s *models.ScoreSubmission) { s.Rounds[4].RoundNumber = 9 }, field: "rounds[4].round_number"},
		{name: "duplicate round", userID: 1, mutate: func(s *models.ScoreSubmission) { s.Rounds[1].RoundNumber = 1 }, field: "rounds[1].round_number"},
		{name: "negative time", userID: 1, mutate: func(s *models.ScoreSubmission) { s.Rounds[0].TimeTakenMs = -1 }, field: "rounds[0].time_taken_ms"},
	}

	f := newFixture(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := valid
			sub.Rounds = append([]models.RoundInput(nil), valid.Rounds...)
			tt.mutate(&sub)

			_, err := f.svc.Submissions.Submit(context.Background(), tt.userID, sub)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
	assert.Zero(t, count(t, f.db, &models.GameSession{}))
	assert.Zero(t, count(t, f.db, &models.UserStatistics{}))
}

func TestSubmit_NormalizesModeAndStripsMarkup(t *testing.T) {
	f := newFixture(t)
	sub := game(100, 1, 1, "Speed Round")
	sub.Rounds[0].UserGuess = `<script>alert(1)</script>Daft Punk`

	res := f.submit(t, 1, sub)

	session, err := f.svc.Sessions.Get(context.Background(), 1, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "speed-round", session.GameMode)
	require.Len(t, session.Rounds, 1)
	assert.Equal(t, "Daft Punk", session.Rounds[0].UserGuess)
}

func TestSubmit_IdempotentReplay(t *testing.T) {
	f := newFixture(t)
	sub := game(700, 7, 10, "standard")
	sub.IdempotencyKey = "retry-1"

	first := f.submit(t, 3, sub)
	second := f.submit(t, 3, sub)

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.True(t, second.Replayed)
	assert.Empty(t, second.NewAchievements)
	assert.Zero(t, second.AchievementCount)
	assert.Equal(t, first.LeaderboardPosition, second.LeaderboardPosition)
	assert.Equal(t, 1, second.Streak.CurrentStreak)
	assert.False(t, second.Streak.StreakContinued)

	stats, err := f.svc.Statistics.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalGamesPlayed)
	assert.EqualValues(t, 1, count(t, f.db, &models.LeaderboardEntry{}))

	// The same key from another user is a different submission.
	other := f.submit(t, 4, sub)
	assert.NotEqual(t, first.SessionID, other.SessionID)
	assert.False(t, other.Replayed)
}

func TestSubmit_LostKeyRaceReplaysWinner(t *testing.T) {
	f := newFixture(t)
	sub := game(650, 6, 10, "standard")
	sub.IdempotencyKey = "race-1"

	// A concurrent request with the same key commits right after the loser's
	// key lookup came back empty.
	var winner *models.SubmitResult
	require.NoError(t, f.db.Callback().Query().After("gorm:query").Register("test:commit_winner", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*models.GameSession); !ok || winner != nil {
			return
		}
		winner = &models.SubmitResult{}
		res, err := f.svc.Submissions.Submit(context.Background(), 5, sub)
		require.NoError(t, err)
		winner = res
	}))

	res, err := f.svc.Submissions.Submit(context.Background(), 5, sub)
	require.NoError(t, err)
	require.NotNil(t, winner)
	require.NotZero(t, winner.SessionID)
	assert.False(t, winner.Replayed)

	assert.True(t, res.Replayed)
	assert.Equal(t, winner.SessionID, res.SessionID)
	assert.Equal(t, winner.LeaderboardPosition, res.LeaderboardPosition)
	assert.Empty(t, res.NewAchievements)
	assert.EqualValues(t, 1, count(t, f.db, &models.GameSession{}))
	assert.EqualValues(t, 1, count(t, f.db, &models.LeaderboardEntry{}))

	stats, err := f.svc.Statistics.Get(context.Background(), 5)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalGamesPlayed)
}

func newMockedSubmissions(t *testing.T) (*SubmissionService, *mock.MockStreakTracker, *mock.MockAchievementAwarder, *gorm.DB) {
	ctrl := gomock.NewController(t)
	streaks := mock.NewMockStreakTracker(ctrl)
	awards := mock.NewMockAchievementAwarder(ctrl)
	db := testutil.NewDB(t)
	svc := NewSubmissionService(db, NewStatisticsService(db), NewLeaderboardService(db, nil, 0),
		streaks, awards, clockwork.NewFakeClockAt(day0))
	return svc, streaks, awards, db
}

func TestSubmit_SecondaryEffectsDegrade(t *testing.T) {
	svc, streaks, awards, db := newMockedSubmissions(t)

	streaks.EXPECT().
		Update(gomock.Any(), uint(11), models.StreakPlayGame).
		Return(nil, errors.New("streak store down"))
	awards.EXPECT().
		Evaluate(gomock.Any(), uint(11), models.GameSnapshot{Score: 400, Accuracy: 80, TotalRounds: 5, CorrectAnswers: 4}).
		Return(nil, errors.New("achievements store down"))

	res, err := svc.Submit(context.Background(), 11, game(400, 4, 5, "standard"))
	require.NoError(t, err)

	assert.True(t, res.StreakDegraded)
	assert.True(t, res.AchievementsDegraded)
	assert.Equal(t, models.StreakSummary{}, res.Streak)
	assert.NotNil(t, res.NewAchievements)
	assert.Empty(t, res.NewAchievements)
	assert.EqualValues(t, 1, res.LeaderboardPosition)
	assert.EqualValues(t, 1, count(t, db, &models.GameSession{}))
}

func TestSubmit_SnapshotCarriesStreak(t *testing.T) {
	svc, streaks, awards, _ := newMockedSubmissions(t)
	earned := models.AchievementView{
		AchievementDefinition: models.AchievementDefinition{ID: 3, Code: "STREAK_3"},
		IsEarned:              true,
	}

	gomock.InOrder(
		streaks.EXPECT().
			Update(gomock.Any(), uint(12), models.StreakPlayGame).
			Return(&models.StreakResult{CurrentStreak: 3, LongestStreak: 5, Continued: true}, nil),
		awards.EXPECT().
			Evaluate(gomock.Any(), uint(12), models.GameSnapshot{Score: 250, Accuracy: 50, TotalRounds: 10, CorrectAnswers: 5, CurrentStreak: 3}).
			Return([]models.AchievementView{earned}, nil),
	)

	res, err := svc.Submit(context.Background(), 12, game(250, 5, 10, "standard"))
	require.NoError(t, err)
	assert.Equal(t, models.StreakSummary{CurrentStreak: 3, LongestStreak: 5, StreakContinued: true}, res.Streak)
	assert.Equal(t, []string{"STREAK_3"}, codes(res.NewAchievements))
	assert.Equal(t, 1, res.AchievementCount)
}

func TestSubmit_ReplayReadsStreakInfo(t *testing.T) {
	svc, streaks, awards, _ := newMockedSubmissions(t)
	sub := game(250, 5, 10, "standard")
	sub.IdempotencyKey = "k"

	streaks.EXPECT().Update(gomock.Any(), uint(13), models.StreakPlayGame).
		Return(&models.StreakResult{CurrentStreak: 1, LongestStreak: 1, Continued: true, IsNew: true}, nil)
	awards.EXPECT().Evaluate(gomock.Any(), uint(13), gomock.Any()).Return(nil, nil)
	streaks.EXPECT().GetInfo(gomock.Any(), uint(13), models.StreakPlayGame).
		Return(&models.StreakInfo{CurrentStreak: 1, LongestStreak: 1, PlayedToday: true}, nil)

	_, err := svc.Submit(context.Background(), 13, sub)
	require.NoError(t, err)
	res, err := svc.Submit(context.Background(), 13, sub)
	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, models.StreakSummary{CurrentStreak: 1, LongestStreak: 1}, res.Streak)
}

func TestAccuracyOf(t *testing.T) {
	assert.Equal(t, 70.0, accuracyOf(7, 10))
	assert.Equal(t, 33.33, accuracyOf(1, 3))
	assert.Equal(t, 0.0, accuracyOf(0, 0))
}
