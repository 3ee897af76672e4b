package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/beatguess/services"
	"github.com/cppla/beatguess/utils"
)

// AchievementController serves the catalog and per-user progress.
type AchievementController struct {
	achievements *services.AchievementService
}

// NewAchievementController creates a new AchievementController instance.
func NewAchievementController(achievements *services.AchievementService) *AchievementController {
	return &AchievementController{achievements: achievements}
}

// ListAchievements returns every achievement with the caller's progress.
func (a *AchievementController) ListAchievements(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	views, err := a.achievements.Progress(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err, 50050, "failed to load achievements")
		return
	}

	earned := 0
	for _, v := range views {
		if v.IsEarned {
			earned++
		}
	}
	utils.Success(ctx, gin.H{
		"achievements": views,
		"earned_count": earned,
		"total_count":  len(views),
	})
}

// Catalog returns the static achievement definitions.
func (a *AchievementController) Catalog(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"achievements": a.achievements.Catalog()})
}

// CatalogEntry returns a single achievement definition by code.
func (a *AchievementController) CatalogEntry(ctx *gin.Context) {
	def, err := a.achievements.Definition(ctx.Param("code"))
	if err != nil {
		respondError(ctx, err, 50051, "failed to load achievement")
		return
	}
	utils.Success(ctx, gin.H{"achievement": def})
}
