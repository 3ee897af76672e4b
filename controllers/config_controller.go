package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/beatguess/config"
	"github.com/cppla/beatguess/models"
	"github.com/cppla/beatguess/services"
	"github.com/cppla/beatguess/utils"
)

// ConfigController serves the public game rules clients render against.
type ConfigController struct {
	cfg config.AppConfig
}

func NewConfigController(cfg config.AppConfig) *ConfigController { return &ConfigController{cfg: cfg} }

// GetRules returns the day boundary and leaderboard bounds in effect.
func (c *ConfigController) GetRules(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"streak_timezone": c.cfg.StreakLocation().String(),
		"streak_types":    []models.StreakType{models.StreakPlayGame, models.StreakDailyLogin},
		"leaderboard": gin.H{
			"views":         []models.LeaderboardView{models.ViewTopScores, models.ViewAccuracy, models.ViewRecent},
			"default_limit": services.DefaultLeaderboardLimit,
			"max_limit":     services.MaxLeaderboardLimit,
		},
	})
}
