package scheduling

import (
	"context"
	"time"
)

// Meeting statuses that occupy a person's calendar.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
)

// Person is anyone whose calendar takes part in a scheduling query.
// A nil Location means the configured default zone.
type Person struct {
	ID       string
	Name     string
	Location *time.Location
}

type MeetingRef struct {
	ID          string
	Title       string
	OrganizerID string
	Start       time.Time
	End         time.Time
	Status      string
	Deleted     bool
}

func (m MeetingRef) occupies() bool {
	return !m.Deleted && (m.Status == StatusScheduled || m.Status == StatusInProgress)
}

type BlockedRef struct {
	ID          string
	Start       time.Time
	End         time.Time
	Reason      string
	Description string
}

// AvailabilityWindow is a recurring weekly window on one weekday.
// Nil effective bounds are open-ended.
type AvailabilityWindow struct {
	ID             string
	DayOfWeek      int
	Start          TimeOfDay
	End            TimeOfDay
	EffectiveFrom  *time.Time
	EffectiveUntil *time.Time
	Active         bool
}

// LiveOn reports whether the window is active and in effect on the civil date of day.
func (w AvailabilityWindow) LiveOn(day time.Time) bool {
	if !w.Active {
		return false
	}
	d := civilDay(day)
	if w.EffectiveFrom != nil && civilDay(*w.EffectiveFrom) > d {
		return false
	}
	if w.EffectiveUntil != nil && civilDay(*w.EffectiveUntil) < d {
		return false
	}
	return true
}

func (w AvailabilityWindow) contains(from, to TimeOfDay) bool {
	return from >= w.Start && to <= w.End
}

// DataSource is the read-only view of persisted calendars the engine works from.
// Implementations may pre-filter; the engine re-applies every rule it depends on.
type DataSource interface {
	// FindMeetingsForPerson returns meetings the person organizes or attends that may overlap within.
	FindMeetingsForPerson(ctx context.Context, personID string, within Window, excludeMeetingID string) ([]MeetingRef, error)
	// FindBlockedTimesForPerson returns blocked periods owned by the person that may overlap within.
	FindBlockedTimesForPerson(ctx context.Context, personID string, within Window) ([]BlockedRef, error)
	// FindLiveAvailability returns the person's windows for weekday (Monday=0) live as of asOf.
	FindLiveAvailability(ctx context.Context, personID string, weekday int, asOf time.Time) ([]AvailabilityWindow, error)
	// ResolvePerson returns ErrPersonNotFound for unknown ids.
	ResolvePerson(ctx context.Context, personID string) (Person, error)
}
