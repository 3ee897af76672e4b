package main

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/cppla/beatguess/config"
	"github.com/cppla/beatguess/routes"
	"github.com/cppla/beatguess/services"
	"github.com/cppla/beatguess/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(cfg, config.Models()...)
	cache := utils.NewCache(utils.GetRedis(cfg))
	clock := clockwork.NewRealClock()

	svc, err := services.New(context.Background(), services.Options{
		DB:             db,
		Cache:          cache,
		Clock:          clock,
		StreakLocation: cfg.StreakLocation(),
		LeaderboardTTL: time.Duration(cfg.LeaderboardCacheTTLSeconds) * time.Second,
	})
	if err != nil {
		utils.Logger.Fatal("failed to initialise services", zap.Error(err))
	}

	if cfg.LeaderboardWarmIntervalSeconds > 0 {
		warmer, err := services.StartLeaderboardWarmer(svc.Leaderboard,
			time.Duration(cfg.LeaderboardWarmIntervalSeconds)*time.Second, clock)
		if err != nil {
			utils.Logger.Warn("leaderboard warmer disabled", zap.Error(err))
		} else {
			defer func() { _ = warmer.Shutdown() }()
		}
	}

	r := routes.SetupRouter(cfg, svc)

	utils.Sugar.Infof("Starting server on port %s (graceful), streak zone %s", cfg.AppPort, cfg.StreakLocation())
	if err := utils.GraceServer(":"+cfg.AppPort, r, time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
