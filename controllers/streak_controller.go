package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/beatguess/models"
	"github.com/cppla/beatguess/services"
	"github.com/cppla/beatguess/utils"
)

// StreakController exposes streak reads and the daily login check-in.
type StreakController struct {
	streaks *services.StreakService
}

// NewStreakController creates a new controller instance.
func NewStreakController(streaks *services.StreakService) *StreakController {
	return &StreakController{streaks: streaks}
}

// GetStreak returns the caller's streak of the given type.
func (s *StreakController) GetStreak(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	info, err := s.streaks.GetInfo(ctx.Request.Context(), userID, models.StreakType(ctx.Param("type")))
	if err != nil {
		respondError(ctx, err, 50031, "failed to load streak")
		return
	}
	utils.Success(ctx, info)
}

// DailyCheckIn records today's login. Repeating it the same day is a no-op.
func (s *StreakController) DailyCheckIn(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	result, err := s.streaks.Update(ctx.Request.Context(), userID, models.StreakDailyLogin)
	if err != nil {
		respondError(ctx, err, 50030, "failed to record check-in")
		return
	}
	utils.Success(ctx, result)
}
