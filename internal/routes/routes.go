package routes

import (
	"devconnect-api/internal/chat"
	"devconnect-api/internal/handlers"
	"devconnect-api/internal/middleware"
	"devconnect-api/internal/notify"
	"devconnect-api/internal/realtime"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(hub *realtime.Hub, chatSvc *chat.Service, notifier *notify.Service) *gin.Engine {
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

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "DevConnect API is running",
		})
	})

	followHandler := handlers.NewFollowHandler(notifier)
	projectHandler := handlers.NewProjectHandler(notifier)
	invitationHandler := handlers.NewInvitationHandler(notifier)
	messageHandler := handlers.NewMessageHandler(chatSvc)
	notificationHandler := handlers.NewNotificationHandler(notifier)
	wsHandler := handlers.NewWSHandler(hub)

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/register", handlers.Register)
		api.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// User endpoints
		protectedRoutes.GET("/users", handlers.GetAllUsers)
		protectedRoutes.GET("/users/:id", handlers.GetUser)
		protectedRoutes.GET("/users/:id/followers", followHandler.Followers)
		protectedRoutes.GET("/users/:id/following", followHandler.Following)

		// Follow endpoints
		protectedRoutes.POST("/follow/:userId", followHandler.Follow)
		protectedRoutes.DELETE("/follow/:userId", followHandler.Unfollow)

		// Project endpoints
		protectedRoutes.POST("/projects", projectHandler.Create)
		protectedRoutes.GET("/projects", projectHandler.List)
		protectedRoutes.GET("/projects/:id", projectHandler.Get)
		protectedRoutes.PUT("/projects/:id", projectHandler.Update)
		protectedRoutes.DELETE("/projects/:id", projectHandler.Delete)
		protectedRoutes.POST("/projects/:id/invitations", invitationHandler.Invite)
		protectedRoutes.POST("/projects/:id/join-requests", invitationHandler.RequestJoin)

		// Invitation endpoints
		protectedRoutes.GET("/invitations", invitationHandler.List)
		protectedRoutes.POST("/invitations/:id/accept", invitationHandler.Accept)
		protectedRoutes.POST("/invitations/:id/reject", invitationHandler.Reject)

		// Message endpoints
		protectedRoutes.POST("/messages/conversations/direct", messageHandler.CreateDirectConversation)
		protectedRoutes.GET("/messages/conversations", messageHandler.ListConversations)
		protectedRoutes.GET("/messages/conversations/:conversationId/messages", messageHandler.GetMessages)
		protectedRoutes.POST("/messages/conversations/:conversationId/messages", messageHandler.SendMessage)
		protectedRoutes.PATCH("/messages/conversations/:conversationId/read", messageHandler.MarkRead)
		protectedRoutes.PATCH("/messages/:messageId", messageHandler.EditMessage)
		protectedRoutes.DELETE("/messages/:messageId", messageHandler.DeleteMessage)
		protectedRoutes.GET("/messages/search", messageHandler.SearchMessages)
		protectedRoutes.GET("/messages/unread-count", messageHandler.UnreadCount)

		// Notification endpoints
		protectedRoutes.GET("/notifications", notificationHandler.List)
		protectedRoutes.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protectedRoutes.PATCH("/notifications/read-all", notificationHandler.MarkAllRead)
		protectedRoutes.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
		protectedRoutes.DELETE("/notifications/:id", notificationHandler.Delete)
	}

	// WebSocket endpoint (token via Authorization header or ?token= query)
	wsRoutes := ginRouter.Group("/ws")
	wsRoutes.Use(middleware.JWTAuthMiddleware())
	{
		wsRoutes.GET("", wsHandler.Serve)
	}

	return ginRouter
}
