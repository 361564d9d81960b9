package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	windows := g.Group("/availability")
	windows.Use(authMiddleware)
	{
		windows.GET("", h.ListWindows)
		windows.POST("", h.CreateWindow)
		windows.POST("/business-hours", h.SetBusinessHours)
		windows.PATCH("/:id", h.UpdateWindow)
		windows.DELETE("/:id", h.DeleteWindow)
	}

	blocked := g.Group("/blocked-times")
	blocked.Use(authMiddleware)
	{
		blocked.GET("", h.ListBlockedTimes)
		blocked.POST("", h.CreateBlockedTime)
		blocked.DELETE("/:id", h.DeleteBlockedTime)
	}

	g.GET("/users/:id/availability", authMiddleware, h.UserAvailability)
}
