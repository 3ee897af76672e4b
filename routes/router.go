package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"

	"github.com/cppla/beatguess/config"
	"github.com/cppla/beatguess/controllers"
	"github.com/cppla/beatguess/middleware"
	"github.com/cppla/beatguess/services"
	"github.com/cppla/beatguess/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, svc *services.Services) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	// Access log goes to its own rolling file when GinPath is set.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(ginzap.Ginzap(gl, time.RFC3339, true))
		r.Use(ginzap.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", controllers.IdempotencyKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	gameController := controllers.NewGameController(svc.Submissions, svc.Sessions)
	streakController := controllers.NewStreakController(svc.Streaks)
	leaderboardController := controllers.NewLeaderboardController(svc.Leaderboard)
	achievementController := controllers.NewAchievementController(svc.Achievements)
	statsController := controllers.NewStatsController(svc.Statistics)
	configController := controllers.NewConfigController(cfg)

	api := r.Group("/api/v1")

	// Public reads
	api.GET("/leaderboard", leaderboardController.GetLeaderboard)
	api.GET("/achievements/catalog", achievementController.Catalog)
	api.GET("/achievements/catalog/:code", achievementController.CatalogEntry)
	api.GET("/config/rules", configController.GetRules)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(cfg.JWTSecret))

	protected.POST("/games/scores", middleware.RateLimitMiddleware(cfg.RateLimitPerMinute), gameController.SubmitScore)
	protected.GET("/games/sessions", gameController.ListSessions)
	protected.GET("/games/sessions/:id", gameController.GetSession)
	protected.GET("/streaks/:type", streakController.GetStreak)
	protected.POST("/streaks/daily_login", middleware.RateLimitMiddleware(cfg.RateLimitPerMinute), streakController.DailyCheckIn)
	protected.GET("/leaderboard/rank", leaderboardController.GetRank)
	protected.GET("/achievements", achievementController.ListAchievements)
	protected.GET("/users/me/statistics", statsController.GetMyStats)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40401, "not found")
	})

	return r
}
