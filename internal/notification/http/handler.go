package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/auth"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/notification"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/pkg/response"
)

type Handler struct {
	service notification.Service
}

func NewHandler(service notification.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPreferencesResponse(p))
}

func (h *Handler) Update(c *gin.Context) {
	var body UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	p, err := h.service.Update(c.Request.Context(), auth.GetUserID(c), body.toService())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPreferencesResponse(p))
}
