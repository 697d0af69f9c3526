package routes

import (
	"taskflow-api/internal/handlers"
	"taskflow-api/internal/middleware"
	"taskflow-api/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps carries everything the route handlers need.
type Deps struct {
	DB        *gorm.DB
	Svc       *service.TaskService
	TrialDays int
}

func SetupRoutes(deps Deps) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	authHandler := &handlers.AuthHandler{DB: deps.DB, TrialDays: deps.TrialDays}
	userHandler := &handlers.UserHandler{DB: deps.DB, TrialDays: deps.TrialDays}
	taskHandler := &handlers.TaskHandler{DB: deps.DB, Svc: deps.Svc}
	commentHandler := &handlers.CommentHandler{DB: deps.DB, Svc: deps.Svc}
	partnerHandler := &handlers.PartnerHandler{DB: deps.DB}

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Taskflow API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// Task endpoints
		protectedRoutes.GET("/tasks", taskHandler.ListTasks)
		protectedRoutes.GET("/my-today", taskHandler.MyToday)
		protectedRoutes.GET("/tasks/:id", taskHandler.GetTaskByID)
		protectedRoutes.POST("/tasks", taskHandler.CreateTask)
		protectedRoutes.PUT("/tasks/:id", taskHandler.UpdateTask)
		protectedRoutes.DELETE("/tasks/:id", taskHandler.DeleteTask)
		protectedRoutes.GET("/tasks/:id/attachments/:attachmentId", taskHandler.DownloadAttachment)
		// Comment endpoints
		protectedRoutes.GET("/tasks/:id/comments", commentHandler.ListComments)
		protectedRoutes.POST("/tasks/:id/comments", commentHandler.CreateComment)
		protectedRoutes.DELETE("/tasks/:id/comments/:commentId", commentHandler.DeleteComment)
		// Accountability partner endpoints
		protectedRoutes.GET("/accountability/partners", partnerHandler.ListPartnerships)
		protectedRoutes.POST("/accountability/partners", partnerHandler.RequestPartnership)
		protectedRoutes.POST("/accountability/partners/:id/accept", partnerHandler.AcceptPartnership)
		protectedRoutes.POST("/accountability/partners/:id/reject", partnerHandler.RejectPartnership)
		// User endpoints
		protectedRoutes.GET("/users", userHandler.GetAllUsers)
		protectedRoutes.GET("/users/me", userHandler.Me)
		protectedRoutes.PUT("/users/me", userHandler.UpdateMe)
		protectedRoutes.POST("/users/me/trial", userHandler.StartTrial)
		// WebSocket endpoint for task events
		protectedRoutes.GET("/ws", handlers.WebSocketHandler)
	}

	return ginRouter
}
