package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/beatguess/models"
	"github.com/cppla/beatguess/testutil"
	"github.com/cppla/beatguess/utils"
)

var day0 = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db    *gorm.DB
	clock *clockwork.FakeClock
	svc   *Services
	redis *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	clock := clockwork.NewFakeClockAt(day0)
	svc, err := New(context.Background(), Options{
		DB:             db,
		Cache:          utils.NewCache(rc),
		Clock:          clock,
		StreakLocation: time.UTC,
		LeaderboardTTL: time.Minute,
	})
	require.NoError(t, err)
	return &fixture{db: db, clock: clock, svc: svc, redis: mr}
}

func game(score, correct, total int, mode string) models.ScoreSubmission {
	rounds := make([]models.RoundInput, total)
	for i := range rounds {
		rounds[i] = models.RoundInput{
			RoundNumber:  i + 1,
			TrackID:      "trk",
			TrackTitle:   "Title",
			TrackArtist:  "Artist",
			UserGuess:    "Guess",
			IsCorrect:    i < correct,
			TimeTakenMs:  1500,
			PointsEarned: 0,
		}
	}
	return models.ScoreSubmission{
		TotalRounds:    total,
		CorrectAnswers: correct,
		Score:          score,
		GameMode:       mode,
		Rounds:         rounds,
	}
}

func (f *fixture) submit(t *testing.T, userID uint, sub models.ScoreSubmission) *models.SubmitResult {
	t.Helper()
	res, err := f.svc.Submissions.Submit(context.Background(), userID, sub)
	require.NoError(t, err)
	return res
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func codes(views []models.AchievementView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Code)
	}
	return out
}
