package http

import (
	"time"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/availability"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling"
)

const dateLayout = "2006-01-02"

var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

type WindowResponse struct {
	ID             string    `json:"id"`
	DayOfWeek      int       `json:"day_of_week"`
	DayName        string    `json:"day_name"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	EffectiveFrom  *string   `json:"effective_from"`
	EffectiveUntil *string   `json:"effective_until"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func NewWindowResponse(w *availability.Window) WindowResponse {
	return WindowResponse{
		ID:             w.ID,
		DayOfWeek:      w.DayOfWeek,
		DayName:        dayNames[w.DayOfWeek],
		StartTime:      w.StartTime.String(),
		EndTime:        w.EndTime.String(),
		EffectiveFrom:  formatDate(w.EffectiveFrom),
		EffectiveUntil: formatDate(w.EffectiveUntil),
		IsActive:       w.IsActive,
		CreatedAt:      w.CreatedAt,
	}
}

func NewWindowResponses(ws []*availability.Window) []WindowResponse {
	items := make([]WindowResponse, len(ws))
	for i, w := range ws {
		items[i] = NewWindowResponse(w)
	}
	return items
}

type BlockedTimeResponse struct {
	ID          string    `json:"id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Reason      string    `json:"reason"`
	Description string    `json:"description"`
	IsAllDay    bool      `json:"is_all_day"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewBlockedTimeResponse(b *availability.BlockedTime) BlockedTimeResponse {
	return BlockedTimeResponse{
		ID:          b.ID,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Reason:      string(b.Reason),
		Description: b.Description,
		IsAllDay:    b.IsAllDay,
		CreatedAt:   b.CreatedAt,
	}
}

func NewBlockedTimeResponses(bs []*availability.BlockedTime) []BlockedTimeResponse {
	items := make([]BlockedTimeResponse, len(bs))
	for i, b := range bs {
		items[i] = NewBlockedTimeResponse(b)
	}
	return items
}

// CreateWindowRequest accepts times as HH:MM and dates as YYYY-MM-DD.
type CreateWindowRequest struct {
	DayOfWeek      *int    `json:"day_of_week" binding:"required,min=0,max=6"`
	StartTime      string  `json:"start_time" binding:"required"`
	EndTime        string  `json:"end_time" binding:"required"`
	EffectiveFrom  *string `json:"effective_from"`
	EffectiveUntil *string `json:"effective_until"`
	IsActive       *bool   `json:"is_active"`
}

// Validate parses the textual fields into a service request.
func (r *CreateWindowRequest) Validate() (availability.CreateWindowRequest, error) {
	var out availability.CreateWindowRequest
	var err error

	out.DayOfWeek = *r.DayOfWeek
	if out.StartTime, err = scheduling.ParseTimeOfDay(r.StartTime); err != nil {
		return out, err
	}
	if out.EndTime, err = scheduling.ParseTimeOfDay(r.EndTime); err != nil {
		return out, err
	}
	if out.EffectiveFrom, err = parseDate(r.EffectiveFrom); err != nil {
		return out, err
	}
	if out.EffectiveUntil, err = parseDate(r.EffectiveUntil); err != nil {
		return out, err
	}
	out.IsActive = r.IsActive
	return out, nil
}

type UpdateWindowRequest struct {
	DayOfWeek      *int    `json:"day_of_week" binding:"omitempty,min=0,max=6"`
	StartTime      *string `json:"start_time"`
	EndTime        *string `json:"end_time"`
	EffectiveFrom  *string `json:"effective_from"`
	EffectiveUntil *string `json:"effective_until"`
	IsActive       *bool   `json:"is_active"`
}

func (r *UpdateWindowRequest) Validate() (availability.UpdateWindowRequest, error) {
	out := availability.UpdateWindowRequest{DayOfWeek: r.DayOfWeek, IsActive: r.IsActive}
	var err error

	if out.StartTime, err = parseTimeOfDay(r.StartTime); err != nil {
		return out, err
	}
	if out.EndTime, err = parseTimeOfDay(r.EndTime); err != nil {
		return out, err
	}
	if out.EffectiveFrom, err = parseDate(r.EffectiveFrom); err != nil {
		return out, err
	}
	if out.EffectiveUntil, err = parseDate(r.EffectiveUntil); err != nil {
		return out, err
	}
	return out, nil
}

// BusinessHoursRequest defaults to 08:00-18:00 when fields are omitted.
type BusinessHoursRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (r *BusinessHoursRequest) Validate() (start, end scheduling.TimeOfDay, err error) {
	start, end = scheduling.DefaultBusinessHours.Start, scheduling.DefaultBusinessHours.End
	if r.StartTime != "" {
		if start, err = scheduling.ParseTimeOfDay(r.StartTime); err != nil {
			return
		}
	}
	if r.EndTime != "" {
		if end, err = scheduling.ParseTimeOfDay(r.EndTime); err != nil {
			return
		}
	}
	return
}

type CreateBlockedTimeRequest struct {
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	Reason      string    `json:"reason" binding:"omitempty,oneof=vacation busy personal holiday other"`
	Description string    `json:"description" binding:"max=255"`
	IsAllDay    bool      `json:"is_all_day"`
}

// Validate performs custom validation for CreateBlockedTimeRequest.
func (r *CreateBlockedTimeRequest) Validate() error {
	if !r.EndTime.After(r.StartTime) {
		return availability.ErrInvalidTimeRange
	}
	return nil
}

type UserSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

type UserAvailabilityResponse struct {
	User         UserSummary           `json:"user"`
	Availability []WindowResponse      `json:"availability"`
	BlockedTimes []BlockedTimeResponse `json:"blocked_times"`
}

func parseTimeOfDay(s *string) (*scheduling.TimeOfDay, error) {
	if s == nil {
		return nil, nil
	}
	t, err := scheduling.ParseTimeOfDay(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
