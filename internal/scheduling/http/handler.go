package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/auth"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/pkg/request"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/pkg/response"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling"
)

type Handler struct {
	service scheduling.Service
	logger  *zap.Logger
	now     func() time.Time
}

func NewHandler(service scheduling.Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger, now: time.Now}
}

func (h *Handler) logSkipped(c *gin.Context, skipped []string) {
	if len(skipped) == 0 {
		return
	}
	h.logger.Warn("unknown participants skipped",
		zap.String("path", c.FullPath()),
		zap.String("organizer_id", auth.GetUserID(c)),
		zap.Strings("participant_ids", skipped),
	)
}

// CheckConflicts reports conflicts for the caller as organizer and every participant.
func (h *Handler) CheckConflicts(c *gin.Context) {
	var body ConflictCheckRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	report, err := h.service.CheckConflicts(c.Request.Context(), auth.GetUserID(c), body.Candidate())
	if err != nil {
		Error(c, err)
		return
	}
	h.logSkipped(c, report.SkippedParticipantIDs)

	c.JSON(http.StatusOK, gin.H{
		"has_conflicts": report.HasAnyConflicts,
		"data":          NewAggregateReportResponse(report),
	})
}

// Suggestions returns free slots for the caller and the participants.
func (h *Handler) Suggestions(c *gin.Context) {
	var body SuggestionsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	date, err := body.Date()
	if err != nil {
		response.BadRequest(c, "invalid preferred_date", err)
		return
	}

	slots, skipped, err := h.service.SuggestSlots(c.Request.Context(), scheduling.SuggestRequest{
		OrganizerID:     auth.GetUserID(c),
		ParticipantIDs:  body.ParticipantIDs,
		DurationMinutes: body.DurationMinutes,
		PreferredDate:   date,
		NumSuggestions:  body.NumSuggestions,
		DaysToSearch:    body.DaysToSearch,
	})
	if err != nil {
		Error(c, err)
		return
	}
	h.logSkipped(c, skipped)

	c.JSON(http.StatusOK, gin.H{"items": NewSlotResponses(slots)})
}

// NextSlot returns the earliest free slot, or a null slot when none exists in range.
func (h *Handler) NextSlot(c *gin.Context) {
	var body NextSlotRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	after := h.now()
	if body.After != nil {
		after = *body.After
	}

	slot, skipped, err := h.service.FindNextAvailableSlot(c.Request.Context(), scheduling.NextSlotRequest{
		OrganizerID:     auth.GetUserID(c),
		ParticipantIDs:  body.ParticipantIDs,
		DurationMinutes: body.DurationMinutes,
		After:           after,
		MaxDays:         body.MaxDays,
	})
	if err != nil {
		Error(c, err)
		return
	}
	h.logSkipped(c, skipped)

	if slot == nil {
		c.JSON(http.StatusOK, gin.H{"slot": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot": NewSlotResponse(*slot)})
}

type personConflictsRequest struct {
	StartTime        time.Time `json:"start_time" binding:"required"`
	EndTime          time.Time `json:"end_time" binding:"required"`
	ExcludeMeetingID string    `json:"exclude_meeting_id" binding:"omitempty,uuid"`
}

// PersonConflicts checks a single user's calendar.
func (h *Handler) PersonConflicts(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var body personConflictsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	report, err := h.service.PersonConflicts(c.Request.Context(), uri.ID, body.StartTime, body.EndTime, body.ExcludeMeetingID)
	if err != nil {
		Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewConflictReportResponse(report))
}
