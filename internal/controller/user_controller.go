package controller

import (
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// @Summary Update the current user's profile
// @Tags user
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.ProfileUpdateRequest true "profile"
// @Success 200 {object} util.Response
// @Router /user/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ProfileUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	updated, err := c.UserService.UpdateProfile(user.UserID, req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, updated)
}

// @Summary Upload the current user's avatar
// @Tags user
// @Accept mpfd
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "image file"
// @Success 200 {object} util.Response
// @Router /user/avatar/upload [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	if _, err := util.ValidateMimeType(file, []string{util.MimeImage}); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	url, err := c.UserService.UploadAvatar(ctx.Request.Context(), user.UserID, fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}
