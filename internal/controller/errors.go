package controller

import (
	"errors"

	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// handleServiceError maps service failures onto the response envelope:
// not-found sentinels become 404, invalid-state wraps become 400 with the
// wrapped message, anything else is logged as a 500.
func handleServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrPackageNotFound),
		errors.Is(err, util.ErrAttemptNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.Error(ctx, 404, err.Error())
	case errors.Is(err, util.ErrInvalidState):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
