package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/cppla/beatguess/utils"
)

// StartLeaderboardWarmer refreshes the cached top_scores pages every interval.
// The returned scheduler is already running; call Shutdown to stop it.
// A nil clock means the real clock.
func StartLeaderboardWarmer(board *LeaderboardService, interval time.Duration, clock clockwork.Clock) (gocron.Scheduler, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	sched, err := gocron.NewScheduler(gocron.WithClock(clock))
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if err := board.Warm(ctx); err != nil {
				utils.Logger.Warn("leaderboard warm failed", zap.Error(err))
				return
			}
			utils.Logger.Debug("leaderboard cache warmed")
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	return sched, nil
}
