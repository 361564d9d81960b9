package http

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/auth"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/meeting"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/pkg/request"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/pkg/response"
	schedHttp "github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling/http"
)

type Handler struct {
	service meeting.Service
	loc     *time.Location // fallback zone when the token carries none
	now     func() time.Time
}

func NewHandler(service meeting.Service, loc *time.Location) *Handler {
	return &Handler{service: service, loc: loc, now: time.Now}
}

// writeError renders conflicts with their report and alternatives.
func writeError(c *gin.Context, err error) {
	var conflict *meeting.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, response.ErrorResponse{
			Error:   conflict.Error(),
			Details: schedHttp.NewAggregateReportResponse(conflict.Report),
		})
		return
	}
	schedHttp.Error(c, err)
}

// List returns meetings the caller organizes or attends.
func (h *Handler) List(c *gin.Context) {
	var req ListMeetingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	filter, err := req.Filter(auth.GetUserID(c), h.now(), auth.Location(c, h.loc))
	if err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	h.list(c, filter)
}

// Today lists the caller's meetings starting today.
func (h *Handler) Today(c *gin.Context) {
	loc := auth.Location(c, h.loc)
	now := h.now().In(loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	h.listRange(c, from, from.AddDate(0, 0, 1))
}

// ThisWeek lists the caller's meetings from Monday through Sunday of the current week.
func (h *Handler) ThisWeek(c *gin.Context) {
	loc := auth.Location(c, h.loc)
	now := h.now().In(loc)
	offset := (int(now.Weekday()) + 6) % 7
	from := time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, loc)
	h.listRange(c, from, from.AddDate(0, 0, 7))
}

func (h *Handler) listRange(c *gin.Context, from, before time.Time) {
	var params request.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	h.list(c, meeting.Filter{
		UserID:      auth.GetUserID(c),
		Status:      string(meeting.StatusScheduled),
		StartFrom:   &from,
		StartBefore: &before,
		Page:        params.Page,
		PageSize:    params.PageSize,
		SortOrder:   params.SortOrder,
	})
}

func (h *Handler) list(c *gin.Context, filter meeting.Filter) {
	items, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewPageResponse(NewMeetingResponses(items), filter.Page, filter.PageSize, total))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateMeetingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	m, err := h.service.Create(c.Request.Context(), body.ServiceRequest(auth.GetUserID(c)))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewMeetingResponse(m))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), uri.ID, auth.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewMeetingResponse(m))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var body UpdateMeetingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	m, err := h.service.Update(c.Request.Context(), uri.ID, auth.GetUserID(c), body.ServiceRequest())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewMeetingResponse(m))
}

// Cancel cancels and hides the meeting.
func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.service.Cancel(c.Request.Context(), uri.ID, auth.GetUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Respond(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var body RespondRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	m, err := h.service.Respond(c.Request.Context(), uri.ID, auth.GetUserID(c), meeting.ResponseStatus(body.ResponseStatus), body.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewMeetingResponse(m))
}

// ICS exports the meeting as an iCalendar file.
func (h *Handler) ICS(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), uri.ID, auth.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := meeting.WriteICS(&buf, m, h.now()); err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="meeting-`+m.ID+`.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}
