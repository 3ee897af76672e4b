package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/beatguess/models"
	"github.com/cppla/beatguess/services"
	"github.com/cppla/beatguess/utils"
)

// LeaderboardController serves leaderboard views and ranks.
type LeaderboardController struct {
	board *services.LeaderboardService
}

// NewLeaderboardController creates a new LeaderboardController instance.
func NewLeaderboardController(board *services.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{board: board}
}

// GetLeaderboard returns one view of the leaderboard. game_mode is optional.
func (l *LeaderboardController) GetLeaderboard(ctx *gin.Context) {
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40023, "invalid limit")
			return
		}
		limit = n
	}

	mode := services.NormalizeGameMode(ctx.Query("game_mode"))
	view := models.LeaderboardView(strings.ToLower(strings.TrimSpace(ctx.Query("view"))))

	page, err := l.board.Board(ctx.Request.Context(), mode, view, limit)
	if err != nil {
		respondError(ctx, err, 50040, "failed to load leaderboard")
		return
	}
	utils.Success(ctx, page)
}

// GetRank returns the caller's position in a game mode.
func (l *LeaderboardController) GetRank(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	mode := services.NormalizeGameMode(ctx.Query("game_mode"))
	if mode == "" {
		utils.ErrorWithData(ctx, http.StatusBadRequest, 40020, "invalid request",
			gin.H{"fields": gin.H{"game_mode": "must not be empty"}})
		return
	}

	position, err := l.board.Rank(ctx.Request.Context(), userID, mode)
	if err != nil {
		respondError(ctx, err, 50041, "failed to compute rank")
		return
	}
	utils.Success(ctx, gin.H{"game_mode": mode, "position": position})
}
