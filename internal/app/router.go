package app

import (
	"mock_interview_backend/docs"
	"mock_interview_backend/internal/config"
	"mock_interview_backend/internal/middleware"
	"mock_interview_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/dashboard", c.interview.Dashboard)
		a.registerInterviewRoutes(authGroup, c)
	}
}

func (a *App) registerInterviewRoutes(group *gin.RouterGroup, c *controllers) {
	interviews := group.Group("/interviews")
	{
		interviews.POST("", c.interview.Create)
		interviews.GET("", c.interview.List)
		interviews.GET("/:id", c.interview.Get)
		interviews.GET("/:id/feedback", c.interview.Feedback)
		interviews.POST("/:id/feedback/export", c.interview.ExportFeedback)
	}

	live := interviews.Group("/:id/live")
	{
		live.POST("", c.live.Open)
		live.GET("", c.live.State)
		live.DELETE("", c.live.Close)
		live.GET("/ws", c.live.HandleWS)
		live.POST("/start", c.live.Start)
		live.POST("/stop", c.live.Stop)
		live.POST("/fragments", c.live.Fragment)
		live.POST("/next", c.live.Next)
		live.POST("/previous", c.live.Previous)
		live.POST("/skip", c.live.Skip)
		live.POST("/retry", c.live.Retry)
		live.POST("/speak", c.live.Speak)
		live.POST("/jump/:index", c.live.Jump)
	}
}
