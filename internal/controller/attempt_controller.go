package controller

import (
	"strconv"

	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

type SubmitAnswerRequest struct {
	QuestionID     uint   `json:"questionId" binding:"required"`
	SelectedAnswer string `json:"selectedAnswer" binding:"required,oneof=A B C D E"`
}

// @Summary Start or resume an attempt on a package
// @Tags attempts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "package id"
// @Success 201 {object} util.Response
// @Router /packages/{id}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	packageID := util.MustParseUint(ctx.Param("id"))
	if packageID == 0 {
		util.BadRequest(ctx, "invalid package id")
		return
	}

	snapshot, err := c.AttemptService.StartAttempt(user.UserID, packageID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Created(ctx, snapshot)
}

// @Summary Current attempt snapshot
// @Description Returns the live progress view. A null payload means the
// @Description attempt is unknown or finished; the caller should fetch the
// @Description result instead. Reading an expired attempt finalizes it.
// @Tags attempts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "attempt id"
// @Success 200 {object} util.Response
// @Router /attempts/{id} [get]
func (c *AttemptController) GetSnapshot(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID := util.MustParseUint(ctx.Param("id"))
	if attemptID == 0 {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	snapshot, err := c.AttemptService.GetSnapshot(attemptID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, snapshot)
}

// @Summary Submit the answer for the attempt's current question
// @Tags attempts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "attempt id"
// @Param body body SubmitAnswerRequest true "answer"
// @Success 200 {object} util.Response
// @Router /attempts/{id}/answers [post]
func (c *AttemptController) SubmitAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID := util.MustParseUint(ctx.Param("id"))
	if attemptID == 0 {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	snapshot, err := c.AttemptService.SubmitAnswer(attemptID, req.QuestionID, req.SelectedAnswer, user.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, snapshot)
}

// @Summary Complete an attempt
// @Tags attempts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "attempt id"
// @Success 200 {object} util.Response
// @Router /attempts/{id}/complete [post]
func (c *AttemptController) CompleteAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID := util.MustParseUint(ctx.Param("id"))
	if attemptID == 0 {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	result, err := c.AttemptService.CompleteAttempt(attemptID, user.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary Result review for a completed attempt
// @Tags attempts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "attempt id"
// @Success 200 {object} util.Response
// @Router /attempts/{id}/result [get]
func (c *AttemptController) GetResult(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID := util.MustParseUint(ctx.Param("id"))
	if attemptID == 0 {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	result, err := c.AttemptService.GetResult(attemptID, user.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary Attempt history of the current user
// @Tags attempts
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Success 200 {object} util.Response
// @Router /attempts [get]
func (c *AttemptController) ListAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	page, limit := parsePaging(ctx)

	items, total, err := c.AttemptService.ListUserAttempts(user.UserID, page, limit)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: items, Total: total, Page: page, Limit: limit})
}

func parsePaging(ctx *gin.Context) (int, int) {
	page := 1
	limit := 20
	if p := ctx.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := ctx.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	return page, limit
}
