package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/beatguess/services"
	"github.com/cppla/beatguess/utils"
)

// StatsController provides per-user aggregate statistics.
type StatsController struct {
	stats *services.StatisticsService
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(stats *services.StatisticsService) *StatsController {
	return &StatsController{stats: stats}
}

// GetMyStats returns the caller's running totals and bests.
func (s *StatsController) GetMyStats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	stats, err := s.stats.Get(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err, 50060, "failed to load statistics")
		return
	}

	var accuracy float64
	if stats.TotalRoundsPlayed > 0 {
		accuracy = float64(stats.TotalCorrectAnswers) / float64(stats.TotalRoundsPlayed) * 100
	}
	utils.Success(ctx, gin.H{
		"statistics":       stats,
		"overall_accuracy": accuracy,
	})
}
