package main

import (
	"github.com/gin-gonic/gin"

	"github.com/convoqa/backend/internal/config"
	"github.com/convoqa/backend/internal/handlers"
	"github.com/convoqa/backend/internal/middleware"
	"github.com/convoqa/backend/internal/models"
	"github.com/convoqa/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices, cfg *config.Config) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the login endpoint
	loginLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "convoqa"})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", loginLimiter.Middleware(), svc.authHandler.Login)
		}

		// SSE Events (public route with internal token validation)
		eventsHandler := handlers.NewEventsHandler()
		api.GET("/events/stream", eventsHandler.StreamTableEvents)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)

			// Dashboard
			dashboardHandler := handlers.NewDashboardHandler(models.GetDB(), cfg)
			protected.GET("/dashboard/stats", dashboardHandler.GetStats)

			// Conversations
			conversationHandler := handlers.NewConversationHandler(models.GetDB(), cfg)
			protected.GET("/conversations", conversationHandler.List)
			protected.GET("/conversations/search", conversationHandler.Search)
			protected.GET("/conversations/:id", conversationHandler.GetByID)
			protected.GET("/agents", conversationHandler.Agents)
			protected.GET("/workspaces", conversationHandler.Workspaces)

			// Feedback
			feedbackHandler := handlers.NewFeedbackHandler(models.GetDB(), cfg)
			protected.GET("/feedback", feedbackHandler.List)
			protected.GET("/reviewers", feedbackHandler.Reviewers)
			protected.POST("/feedback", feedbackHandler.Create)
			protected.PUT("/feedback/:id", feedbackHandler.Update)
			protected.DELETE("/feedback/:id", feedbackHandler.Delete)

			// Agent groups (read for all users)
			groupHandler := handlers.NewGroupHandler(models.GetDB())
			protected.GET("/groups", groupHandler.List)
			protected.GET("/groups/:id", groupHandler.GetByID)

			// Scoring config (read for all users)
			systemConfigHandler := handlers.NewSystemConfigHandler(models.GetDB(), cfg)
			protected.GET("/config/scoring", systemConfigHandler.GetScoringConfig)

			// Sync status (read for all users)
			syncHandler := handlers.NewSyncHandler(svc.syncService)
			protected.GET("/sync/status", syncHandler.Status)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			// Agent groups (write operations)
			groupHandler := handlers.NewGroupHandler(models.GetDB())
			admin.POST("/groups", groupHandler.Create)
			admin.PUT("/groups/:id", groupHandler.Update)
			admin.DELETE("/groups/:id", groupHandler.Delete)

			// Scoring config (write operations)
			systemConfigHandler := handlers.NewSystemConfigHandler(models.GetDB(), cfg)
			admin.PUT("/config/scoring", systemConfigHandler.UpdateScoringConfig)

			// Sync trigger
			syncHandler := handlers.NewSyncHandler(svc.syncService)
			admin.POST("/sync/run", syncHandler.Run)

			// System Logs
			systemLogHandler := handlers.NewSystemLogHandler(models.GetDB())
			admin.GET("/system-logs", systemLogHandler.List)
			admin.GET("/system-logs/modules", systemLogHandler.GetModules)
			admin.GET("/system-logs/retention", systemLogHandler.GetRetention)
			admin.PUT("/system-logs/retention", systemLogHandler.SetRetention)
			admin.POST("/system-logs/cleanup", systemLogHandler.Cleanup)
		}
	}
}
