package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/auth"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/availability"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/pkg/request"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/pkg/response"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/user"
)

type Handler struct {
	service     availability.Service
	userService user.Service
}

func NewHandler(service availability.Service, userService user.Service) *Handler {
	return &Handler{service: service, userService: userService}
}

// ListWindows returns the caller's availability windows.
func (h *Handler) ListWindows(c *gin.Context) {
	windows, err := h.service.ListWindows(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": NewWindowResponses(windows)})
}

func (h *Handler) CreateWindow(c *gin.Context) {
	var body CreateWindowRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	req, err := body.Validate()
	if err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	w, err := h.service.CreateWindow(c.Request.Context(), auth.GetUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewWindowResponse(w))
}

func (h *Handler) UpdateWindow(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateWindowRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	req, err := body.Validate()
	if err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	w, err := h.service.UpdateWindow(c.Request.Context(), uri.ID, auth.GetUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewWindowResponse(w))
}

func (h *Handler) DeleteWindow(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.service.DeleteWindow(c.Request.Context(), uri.ID, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetBusinessHours replaces the caller's Monday to Friday windows.
func (h *Handler) SetBusinessHours(c *gin.Context) {
	var body BusinessHoursRequest
	// An empty body means the default hours.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, "invalid request body", err)
			return
		}
	}
	start, end, err := body.Validate()
	if err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	windows, err := h.service.SetBusinessHours(c.Request.Context(), auth.GetUserID(c), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "business hours set: " + start.String() + " - " + end.String() + " (Monday-Friday)",
		"items":   NewWindowResponses(windows),
	})
}

// ListBlockedTimes returns the caller's blocked times that have not ended.
func (h *Handler) ListBlockedTimes(c *gin.Context) {
	items, err := h.service.ListUpcomingBlockedTimes(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": NewBlockedTimeResponses(items)})
}

func (h *Handler) CreateBlockedTime(c *gin.Context) {
	var body CreateBlockedTimeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.CreateBlockedTime(c.Request.Context(), auth.GetUserID(c), availability.CreateBlockedTimeRequest{
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
		Reason:      availability.Reason(body.Reason),
		Description: body.Description,
		IsAllDay:    body.IsAllDay,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewBlockedTimeResponse(b))
}

func (h *Handler) DeleteBlockedTime(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.service.DeleteBlockedTime(c.Request.Context(), uri.ID, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UserAvailability shows another user's windows and upcoming blocked times.
func (h *Handler) UserAvailability(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	u, err := h.userService.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		response.Error(c, err)
		return
	}

	ov, err := h.service.UserOverview(c.Request.Context(), u.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, UserAvailabilityResponse{
		User:         UserSummary{ID: u.ID, Name: u.Name(), Timezone: u.Timezone},
		Availability: NewWindowResponses(ov.Windows),
		BlockedTimes: NewBlockedTimeResponses(ov.BlockedTimes),
	})
}
