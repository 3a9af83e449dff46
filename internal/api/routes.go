package api

import (
	"github.com/gin-gonic/gin"

	"github.com/coldflow/supportbot/internal/telemetry"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, handler *Handler, provider *telemetry.Provider) {
	// Health and readiness checks
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)

	// Prometheus scrape endpoint
	if provider != nil {
		router.GET("/metrics", gin.WrapH(provider.Handler()))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Conversation endpoints
		chat := v1.Group("/chat")
		{
			chat.POST("", handler.Chat)                              // POST /api/v1/chat
			chat.GET("/:session_id/history", handler.ChatHistory)    // GET /api/v1/chat/:session_id/history
			chat.POST("/:session_id/close", handler.CloseSession)    // POST /api/v1/chat/:session_id/close
		}

		// Match analysis endpoints
		match := v1.Group("/match")
		{
			match.POST("/analyze", handler.Analyze) // POST /api/v1/match/analyze
		}

		// Prompt management endpoints
		prompts := v1.Group("/prompts")
		{
			prompts.GET("", handler.ListPrompts)          // GET /api/v1/prompts
			prompts.POST("", handler.CreatePrompt)        // POST /api/v1/prompts
			prompts.GET("/:id", handler.GetPrompt)        // GET /api/v1/prompts/:id
			prompts.PUT("/:id", handler.UpdatePrompt)     // PUT /api/v1/prompts/:id
			prompts.DELETE("/:id", handler.DeletePrompt)  // DELETE /api/v1/prompts/:id
		}

		// FAQ management endpoints
		faqs := v1.Group("/faqs")
		{
			faqs.GET("", handler.ListFAQs)         // GET /api/v1/faqs
			faqs.POST("", handler.CreateFAQ)       // POST /api/v1/faqs
			faqs.GET("/:id", handler.GetFAQ)       // GET /api/v1/faqs/:id
			faqs.PUT("/:id", handler.UpdateFAQ)    // PUT /api/v1/faqs/:id
			faqs.DELETE("/:id", handler.DeleteFAQ) // DELETE /api/v1/faqs/:id
		}

		// Statistics endpoints
		v1.GET("/stats", handler.GetStats) // GET /api/v1/stats
	}
}
