package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	meetings := g.Group("/meetings")
	meetings.Use(authMiddleware)
	{
		meetings.GET("", h.List)
		meetings.POST("", h.Create)
		meetings.GET("/today", h.Today)
		meetings.GET("/this-week", h.ThisWeek)
		meetings.GET("/:id", h.Get)
		meetings.PATCH("/:id", h.Update)
		meetings.DELETE("/:id", h.Cancel)
		meetings.POST("/:id/respond", h.Respond)
		meetings.GET("/:id/ics", h.ICS)
	}
}
