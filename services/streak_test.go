package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/beatguess/models"
	"github.com/cppla/beatguess/testutil"
)

func newStreaks(t *testing.T, at time.Time, loc *time.Location) (*StreakService, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(at)
	return NewStreakService(testutil.NewDB(t), clock, loc), clock
}

func TestStreakUpdate_FirstActivity(t *testing.T) {
	s, _ := newStreaks(t, day0, nil)

	res, err := s.Update(context.Background(), 1, models.StreakPlayGame)
	require.NoError(t, err)
	assert.Equal(t, models.StreakResult{CurrentStreak: 1, LongestStreak: 1, Continued: true, IsNew: true}, *res)
}

func TestStreakUpdate_SameDayIsIdempotent(t *testing.T) {
	s, clock := newStreaks(t, day0, nil)
	ctx := context.Background()

	_, err := s.Update(ctx, 1, models.StreakPlayGame)
	require.NoError(t, err)
	clock.Advance(3 * time.Hour)
	res, err := s.Update(ctx, 1, models.StreakPlayGame)
	require.NoError(t, err)

	assert.Equal(t, 1, res.CurrentStreak)
	assert.False(t, res.Continued)
	assert.True(t, res.AlreadyActiveToday)
}

func TestStreakUpdate_Sequence(t *testing.T) {
	tests := []struct {
		name        string
		gaps        []time.Duration
		wantCurrent []int
		wantLongest int
	}{
		{
			name:        "gap resets",
			gaps:        []time.Duration{0, 24 * time.Hour, 48 * time.Hour},
			wantCurrent: []int{1, 2, 1},
			wantLongest: 2,
		},
		{
			name:        "longest survives reset",
			gaps:        []time.Duration{0, 24 * time.Hour, 24 * time.Hour, 72 * time.Hour, 24 * time.Hour},
			wantCurrent: []int{1, 2, 3, 1, 2},
			wantLongest: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, clock := newStreaks(t, day0, nil)
			var got []int
			var last *models.StreakResult
			for _, gap := range tt.gaps {
				clock.Advance(gap)
				res, err := s.Update(context.Background(), 1, models.StreakPlayGame)
				require.NoError(t, err)
				assert.LessOrEqual(t, res.CurrentStreak, res.LongestStreak)
				got = append(got, res.CurrentStreak)
				last = res
			}
			assert.Equal(t, tt.wantCurrent, got)
			assert.Equal(t, tt.wantLongest, last.LongestStreak)
		})
	}
}

func TestStreakUpdate_FutureDateCountsAsToday(t *testing.T) {
	s, _ := newStreaks(t, day0, nil)
	require.NoError(t, s.db.Create(&models.DailyStreak{
		UserID:           1,
		StreakType:       models.StreakPlayGame,
		CurrentStreak:    4,
		LongestStreak:    6,
		LastActivityDate: "2025-03-12",
	}).Error)

	res, err := s.Update(context.Background(), 1, models.StreakPlayGame)
	require.NoError(t, err)
	assert.True(t, res.AlreadyActiveToday)
	assert.Equal(t, 4, res.CurrentStreak)
	assert.Equal(t, 6, res.LongestStreak)
}

func TestStreakUpdate_UsesPinnedZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// 23:30 in New York, 03:30 UTC the next day.
	start := time.Date(2025, time.March, 11, 3, 30, 0, 0, time.UTC)

	s, clock := newStreaks(t, start, ny)
	_, err = s.Update(context.Background(), 1, models.StreakPlayGame)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	res, err := s.Update(context.Background(), 1, models.StreakPlayGame)
	require.NoError(t, err)
	assert.True(t, res.Continued, "midnight passed in New York")
	assert.Equal(t, 2, res.CurrentStreak)

	utc, utcClock := newStreaks(t, start, time.UTC)
	_, err = utc.Update(context.Background(), 1, models.StreakPlayGame)
	require.NoError(t, err)
	utcClock.Advance(time.Hour)
	res, err = utc.Update(context.Background(), 1, models.StreakPlayGame)
	require.NoError(t, err)
	assert.True(t, res.AlreadyActiveToday)
}

func TestStreakUpdate_TypesAreIndependent(t *testing.T) {
	s, _ := newStreaks(t, day0, nil)
	ctx := context.Background()

	_, err := s.Update(ctx, 1, models.StreakPlayGame)
	require.NoError(t, err)
	res, err := s.Update(ctx, 1, models.StreakDailyLogin)
	require.NoError(t, err)
	assert.True(t, res.IsNew)

	_, err = s.Update(ctx, 1, models.StreakType("weekly"))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestStreakGetInfo(t *testing.T) {
	s, clock := newStreaks(t, day0, nil)
	ctx := context.Background()

	info, err := s.GetInfo(ctx, 99, models.StreakPlayGame)
	require.NoError(t, err)
	assert.Zero(t, info.CurrentStreak)
	assert.Nil(t, info.LastActivityDate)
	assert.False(t, info.PlayedToday)

	_, err = s.Update(ctx, 99, models.StreakPlayGame)
	require.NoError(t, err)
	info, err = s.GetInfo(ctx, 99, models.StreakPlayGame)
	require.NoError(t, err)
	assert.Equal(t, 1, info.CurrentStreak)
	require.NotNil(t, info.LastActivityDate)
	assert.Equal(t, "2025-03-10", *info.LastActivityDate)
	assert.True(t, info.PlayedToday)

	clock.Advance(24 * time.Hour)
	info, err = s.GetInfo(ctx, 99, models.StreakPlayGame)
	require.NoError(t, err)
	assert.False(t, info.PlayedToday)
	assert.Equal(t, 1, info.CurrentStreak)
}

func TestDayGap(t *testing.T) {
	tests := []struct {
		last, today string
		want        int
		wantErr     bool
	}{
		{"2025-03-10", "2025-03-10", 0, false},
		{"2025-03-09", "2025-03-10", 1, false},
		{"2025-02-28", "2025-03-01", 1, false},
		{"2024-12-31", "2025-01-02", 2, false},
		{"2025-03-11", "2025-03-10", -1, false},
		{"garbage", "2025-03-10", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.last+"->"+tt.today, func(t *testing.T) {
			got, err := dayGap(tt.last, tt.today)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
