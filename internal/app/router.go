package app

import (
	"quizhub_backend/docs"
	"quizhub_backend/internal/config"
	"quizhub_backend/internal/middleware"
	"quizhub_backend/internal/model"
	"quizhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// public routes
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// authenticated routes
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.PUT("/user/profile", c.user.UpdateProfile)
		authGroup.POST("/user/avatar/upload", c.user.UploadAvatar)

		// taking quizzes
		authGroup.GET("/packages", c.pkg.ListPackages)
		authGroup.GET("/packages/:id", c.pkg.GetPackage)
		authGroup.POST("/packages/:id/attempts", c.attempt.StartAttempt)
		authGroup.GET("/packages/:id/leaderboard", c.dashboard.GetLeaderboard)
		authGroup.GET("/attempts", c.attempt.ListAttempts)
		authGroup.GET("/attempts/:id", c.attempt.GetSnapshot)
		authGroup.POST("/attempts/:id/answers", c.attempt.SubmitAnswer)
		authGroup.POST("/attempts/:id/complete", c.attempt.CompleteAttempt)
		authGroup.GET("/attempts/:id/result", c.attempt.GetResult)
		authGroup.GET("/dashboard/stats", c.dashboard.GetUserStats)

		// package authoring
		admin := authGroup.Group("/admin")
		admin.Use(middleware.RoleMiddleware(model.RoleAdmin))
		{
			admin.POST("/packages", c.pkg.CreatePackage)
			admin.PUT("/packages/:id", c.pkg.UpdatePackage)
			admin.DELETE("/packages/:id", c.pkg.DeletePackage)
			admin.GET("/packages/:id/questions", c.pkg.ListQuestions)
			admin.POST("/packages/:id/questions", c.pkg.AddQuestion)
			admin.PUT("/packages/:id/questions/:questionId", c.pkg.UpdateQuestion)
			admin.DELETE("/packages/:id/questions/:questionId", c.pkg.DeleteQuestion)
		}
	}
}
