package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes on the given router
func SetupRoutes(router *gin.Engine, handler *Handler, hub *Hub) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Read endpoints
		v1.GET("/status", handler.GetStatus)
		v1.GET("/config", handler.GetConfig)
		v1.GET("/snapshot", handler.GetSnapshot)
		v1.GET("/stats", handler.GetStats)
		v1.GET("/history", handler.GetHistory)
		v1.GET("/trace", handler.GetTrace)

		// Control endpoints
		v1.POST("/pause", handler.PostPause)
		v1.POST("/resume", handler.PostResume)
		v1.POST("/trace", handler.PostTrace)
		v1.POST("/window", handler.PostWindow)

		// WebSocket endpoint
		if hub != nil {
			v1.GET("/ws", ServeWebSocket(hub))
		}
	}

	// Health check endpoint (outside versioned API)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})
}
