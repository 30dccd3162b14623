package controller

import (
	"strconv"

	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// @Summary Per-package leaderboard of completed scores
// @Tags dashboard
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "package id"
// @Param limit query int false "entries" default(10)
// @Success 200 {object} util.Response
// @Router /packages/{id}/leaderboard [get]
func (c *DashboardController) GetLeaderboard(ctx *gin.Context) {
	packageID := util.MustParseUint(ctx.Param("id"))
	if packageID == 0 {
		util.BadRequest(ctx, "invalid package id")
		return
	}

	limit := 10
	if l := ctx.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}

	entries, err := c.DashboardService.GetLeaderboard(packageID, limit)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// @Summary Attempt stats of the current user
// @Tags dashboard
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /dashboard/stats [get]
func (c *DashboardController) GetUserStats(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.DashboardService.GetUserStats(user.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
