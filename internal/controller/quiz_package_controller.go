package controller

import (
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizPackageController struct {
	PackageService *service.QuizPackageService
}

func NewQuizPackageController(packageService *service.QuizPackageService) *QuizPackageController {
	return &QuizPackageController{PackageService: packageService}
}

// @Summary Create a quiz package
// @Tags packages
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.QuizPackageRequest true "package"
// @Success 201 {object} util.Response
// @Router /admin/packages [post]
func (c *QuizPackageController) CreatePackage(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuizPackageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	pkg, err := c.PackageService.CreatePackage(user.UserID, req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Created(ctx, pkg)
}

// @Summary Update a quiz package
// @Tags packages
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "package id"
// @Param body body service.QuizPackageRequest true "package"
// @Success 200 {object} util.Response
// @Router /admin/packages/{id} [put]
func (c *QuizPackageController) UpdatePackage(ctx *gin.Context) {
	packageID := util.MustParseUint(ctx.Param("id"))
	if packageID == 0 {
		util.BadRequest(ctx, "invalid package id")
		return
	}

	var req service.QuizPackageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	pkg, err := c.PackageService.UpdatePackage(packageID, req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, pkg)
}

// @Summary Delete a quiz package and everything under it
// @Tags packages
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "package id"
// @Success 200 {object} util.Response
// @Router /admin/packages/{id} [delete]
func (c *QuizPackageController) DeletePackage(ctx *gin.Context) {
	packageID := util.MustParseUint(ctx.Param("id"))
	if packageID == 0 {
		util.BadRequest(ctx, "invalid package id")
		return
	}

	if err := c.PackageService.DeletePackage(packageID); err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": packageID})
}

// @Summary List quiz packages
// @Tags packages
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Success 200 {object} util.Response
// @Router /packages [get]
func (c *QuizPackageController) ListPackages(ctx *gin.Context) {
	page, limit := parsePaging(ctx)

	items, total, err := c.PackageService.ListPackages(page, limit)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: items, Total: total, Page: page, Limit: limit})
}

// @Summary Package detail with question count
// @Tags packages
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "package id"
// @Success 200 {object} util.Response
// @Router /packages/{id} [get]
func (c *QuizPackageController) GetPackage(ctx *gin.Context) {
	packageID := util.MustParseUint(ctx.Param("id"))
	if packageID == 0 {
		util.BadRequest(ctx, "invalid package id")
		return
	}

	item, err := c.PackageService.GetPackage(packageID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, item)
}

// @Summary Add a question to a package
// @Tags questions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "package id"
// @Param body body service.QuizQuestionRequest true "question"
// @Success 201 {object} util.Response
// @Router /admin/packages/{id}/questions [post]
func (c *QuizPackageController) AddQuestion(ctx *gin.Context) {
	packageID := util.MustParseUint(ctx.Param("id"))
	if packageID == 0 {
		util.BadRequest(ctx, "invalid package id")
		return
	}

	var req service.QuizQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.PackageService.AddQuestion(packageID, req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// @Summary Update a question
// @Tags questions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "package id"
// @Param questionId path int true "question id"
// @Param body body service.QuizQuestionRequest true "question"
// @Success 200 {object} util.Response
// @Router /admin/packages/{id}/questions/{questionId} [put]
func (c *QuizPackageController) UpdateQuestion(ctx *gin.Context) {
	packageID := util.MustParseUint(ctx.Param("id"))
	questionID := util.MustParseUint(ctx.Param("questionId"))
	if packageID == 0 || questionID == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.QuizQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.PackageService.UpdateQuestion(packageID, questionID, req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// @Summary Delete a question and renumber the rest
// @Tags questions
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "package id"
// @Param questionId path int true "question id"
// @Success 200 {object} util.Response
// @Router /admin/packages/{id}/questions/{questionId} [delete]
func (c *QuizPackageController) DeleteQuestion(ctx *gin.Context) {
	packageID := util.MustParseUint(ctx.Param("id"))
	questionID := util.MustParseUint(ctx.Param("questionId"))
	if packageID == 0 || questionID == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	if err := c.PackageService.DeleteQuestion(packageID, questionID); err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": questionID})
}

// @Summary List the questions of a package, answer keys included
// @Tags questions
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "package id"
// @Success 200 {object} util.Response
// @Router /admin/packages/{id}/questions [get]
func (c *QuizPackageController) ListQuestions(ctx *gin.Context) {
	packageID := util.MustParseUint(ctx.Param("id"))
	if packageID == 0 {
		util.BadRequest(ctx, "invalid package id")
		return
	}

	questions, err := c.PackageService.ListQuestions(packageID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}
