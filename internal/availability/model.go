package availability

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling"
)

var (
	ErrNotFound              = apperror.New(http.StatusNotFound, "availability window not found")
	ErrBlockedTimeNotFound   = apperror.New(http.StatusNotFound, "blocked time not found")
	ErrInvalidDayOfWeek      = apperror.New(http.StatusBadRequest, "day_of_week must be between 0 (Monday) and 6 (Sunday)")
	ErrInvalidTimeRange      = apperror.New(http.StatusBadRequest, "end time must be after start time")
	ErrInvalidEffectiveRange = apperror.New(http.StatusBadRequest, "effective_from must not be after effective_until")
	ErrInvalidReason         = apperror.New(http.StatusBadRequest, "invalid blocked time reason")
	ErrPermissionDenied      = apperror.New(http.StatusForbidden, "permission denied")
)

// UpcomingHorizon is how far ahead UserOverview looks for blocked times.
const UpcomingHorizon = 30 * 24 * time.Hour

type Reason string

const (
	ReasonVacation Reason = "vacation"
	ReasonBusy     Reason = "busy"
	ReasonPersonal Reason = "personal"
	ReasonHoliday  Reason = "holiday"
	ReasonOther    Reason = "other"
)

func (r Reason) Valid() bool {
	switch r {
	case ReasonVacation, ReasonBusy, ReasonPersonal, ReasonHoliday, ReasonOther:
		return true
	}
	return false
}

// Window is a recurring weekly availability window. Overnight windows are not allowed.
type Window struct {
	ID             string
	UserID         string
	DayOfWeek      int // Monday=0
	StartTime      scheduling.TimeOfDay
	EndTime        scheduling.TimeOfDay
	EffectiveFrom  *time.Time // date only
	EffectiveUntil *time.Time // date only
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (w *Window) validate() error {
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return ErrInvalidDayOfWeek
	}
	if w.EndTime <= w.StartTime {
		return ErrInvalidTimeRange
	}
	if w.EffectiveFrom != nil && w.EffectiveUntil != nil && w.EffectiveFrom.After(*w.EffectiveUntil) {
		return ErrInvalidEffectiveRange
	}
	return nil
}

// BlockedTime is a one-off period during which the user cannot meet.
type BlockedTime struct {
	ID          string
	UserID      string
	StartTime   time.Time
	EndTime     time.Time
	Reason      Reason
	Description string
	IsAllDay    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BlockedTimeFilter selects a user's blocked times. Nil bounds are open.
type BlockedTimeFilter struct {
	UserID      string
	EndsAfter   *time.Time // end_time >= EndsAfter
	StartsUntil *time.Time // start_time <= StartsUntil
}

// Overview is what other users see when planning a meeting with someone.
type Overview struct {
	Windows      []*Window
	BlockedTimes []*BlockedTime
}
