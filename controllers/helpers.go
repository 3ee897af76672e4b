package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/beatguess/middleware"
	"github.com/cppla/beatguess/services"
	"github.com/cppla/beatguess/utils"
)

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, v != 0
	case int:
		return uint(v), v > 0
	case int64:
		return uint(v), v > 0
	case float64:
		return uint(v), v > 0
	default:
		return 0, false
	}
}

// respondError maps service errors onto status and business code. Anything
// unrecognised becomes a 500 with the caller's code and message.
func respondError(ctx *gin.Context, err error, code int, message string) {
	var verr *services.ValidationError
	var nf *services.NotFoundError
	var perr *services.PersistenceError

	switch {
	case errors.As(err, &verr):
		utils.ErrorWithData(ctx, http.StatusBadRequest, 40020, "invalid request", gin.H{"fields": verr.Fields})
	case errors.As(err, &nf):
		utils.Error(ctx, http.StatusNotFound, 40420, nf.Error())
	case errors.As(err, &perr):
		utils.Logger.Error("persistence failure",
			zap.String("request_id", ctx.GetString(middleware.ContextRequestIDKey)), zap.Error(err))
		utils.ErrorWithData(ctx, http.StatusServiceUnavailable, 50320, "temporarily unavailable, please retry",
			gin.H{"retryable": perr.Retryable()})
	default:
		utils.Logger.Error(message,
			zap.String("request_id", ctx.GetString(middleware.ContextRequestIDKey)), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, code, message)
	}
}
