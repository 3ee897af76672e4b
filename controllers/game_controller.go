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

// IdempotencyKeyHeader lets clients retry a submission safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// GameController accepts finished games and serves session history.
type GameController struct {
	submissions *services.SubmissionService
	sessions    *services.SessionService
}

// NewGameController creates a new GameController instance.
func NewGameController(submissions *services.SubmissionService, sessions *services.SessionService) *GameController {
	return &GameController{submissions: submissions, sessions: sessions}
}

// SubmitScore persists a finished game and returns rank, streak and new achievements.
func (g *GameController) SubmitScore(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req models.ScoreSubmission
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}
	if key := strings.TrimSpace(ctx.GetHeader(IdempotencyKeyHeader)); key != "" {
		req.IdempotencyKey = key
	}

	result, err := g.submissions.Submit(ctx.Request.Context(), userID, req)
	if err != nil {
		respondError(ctx, err, 50020, "failed to submit score")
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	utils.Respond(ctx, status, 0, "success", result)
}

// ListSessions returns the caller's sessions, newest first.
func (g *GameController) ListSessions(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	sessions, total, err := g.sessions.History(ctx.Request.Context(), userID, page, pageSize)
	if err != nil {
		respondError(ctx, err, 50021, "failed to load sessions")
		return
	}

	utils.Success(ctx, gin.H{
		"sessions":  sessions,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetSession returns one of the caller's sessions with its rounds.
func (g *GameController) GetSession(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid session id")
		return
	}

	session, err := g.sessions.Get(ctx.Request.Context(), userID, uint(id))
	if err != nil {
		respondError(ctx, err, 50022, "failed to load session")
		return
	}

	utils.Success(ctx, gin.H{"session": session})
}
