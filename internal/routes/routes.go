package routes

import (
	"orga-bot/internal/auth"
	"orga-bot/internal/handlers"
	"orga-bot/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(h *handlers.Handler, authMgr *auth.Manager) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), middleware.RequestLogger())

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "orga-bot API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/login", h.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware(authMgr))
	{
		// Task endpoints
		protectedRoutes.GET("/tasks/today", h.GetTodaysTasks)
		protectedRoutes.GET("/tasks/pending", h.GetPendingTasks)
		protectedRoutes.POST("/tasks", h.CreateTask)
		protectedRoutes.POST("/tasks/done", h.MarkTaskDone)
		protectedRoutes.GET("/tasks.ics", h.ExportICS)
		// Jobs
		protectedRoutes.POST("/recurrence/run", h.RunRecurrence)
		protectedRoutes.POST("/import", h.RunImport)
		// Calendar
		protectedRoutes.POST("/events", h.AddEvent)
	}

	ws := ginRouter.Group("")
	ws.Use(middleware.JWTAuthMiddleware(authMgr))
	ws.GET("/ws", h.WebSocketHandler)

	return ginRouter
}
