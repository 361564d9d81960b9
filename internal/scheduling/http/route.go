package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	sched := g.Group("/scheduling")
	sched.Use(authMiddleware)
	{
		sched.POST("/conflicts", h.CheckConflicts)
		sched.POST("/suggestions", h.Suggestions)
		sched.POST("/next-slot", h.NextSlot)
		sched.POST("/users/:id/conflicts", h.PersonConflicts)
	}
}
