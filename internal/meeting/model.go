package meeting

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling"
)

var (
	ErrNotFound               = apperror.New(http.StatusNotFound, "meeting not found")
	ErrInvalidTimeRange       = apperror.New(http.StatusBadRequest, "end time must be after start time")
	ErrStartTimePast          = apperror.New(http.StatusBadRequest, "meeting start time must be in the future")
	ErrInvalidDuration        = apperror.New(http.StatusBadRequest, "meeting duration must be between 5 and 480 minutes")
	ErrTitleRequired          = apperror.New(http.StatusBadRequest, "title is required")
	ErrAddressRequired        = apperror.New(http.StatusBadRequest, "physical address is required for physical and hybrid meetings")
	ErrVirtualDetailsRequired = apperror.New(http.StatusBadRequest, "virtual link or platform is required for virtual and hybrid meetings")
	ErrInvalidLocationType    = apperror.New(http.StatusBadRequest, "invalid location type")
	ErrInvalidStatus          = apperror.New(http.StatusBadRequest, "invalid meeting status")
	ErrInvalidResponse        = apperror.New(http.StatusBadRequest, "invalid response status")
	ErrParticipantNotFound    = apperror.New(http.StatusBadRequest, "one or more participants do not exist")
	ErrNotOrganizer           = apperror.New(http.StatusForbidden, "only the organizer can change this meeting")
	ErrNotParticipant         = apperror.New(http.StatusBadRequest, "you are not a participant of this meeting")
	ErrAlreadyCancelled       = apperror.New(http.StatusConflict, "meeting is already cancelled")
	ErrConflicts              = apperror.New(http.StatusConflict, "scheduling conflicts detected")
)

const (
	MinDurationMinutes = 5
	MaxDurationMinutes = 480
)

type Status string

const (
	StatusScheduled  Status = scheduling.StatusScheduled
	StatusInProgress Status = scheduling.StatusInProgress
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type LocationType string

const (
	LocationPhysical LocationType = "physical"
	LocationVirtual  LocationType = "virtual"
	LocationHybrid   LocationType = "hybrid"
)

type VirtualPlatform string

const (
	PlatformZoom       VirtualPlatform = "zoom"
	PlatformGoogleMeet VirtualPlatform = "google_meet"
	PlatformTeams      VirtualPlatform = "ms_teams"
	PlatformOther      VirtualPlatform = "other"
)

var platformNames = map[VirtualPlatform]string{
	PlatformZoom:       "Zoom",
	PlatformGoogleMeet: "Google Meet",
	PlatformTeams:      "Microsoft Teams",
	PlatformOther:      "Other",
}

type ResponseStatus string

const (
	ResponsePending   ResponseStatus = "pending"
	ResponseAccepted  ResponseStatus = "accepted"
	ResponseDeclined  ResponseStatus = "declined"
	ResponseTentative ResponseStatus = "tentative"
)

func (r ResponseStatus) Valid() bool {
	switch r {
	case ResponsePending, ResponseAccepted, ResponseDeclined, ResponseTentative:
		return true
	}
	return false
}

type Participant struct {
	UserID          string
	Name            string
	Email           string
	ResponseStatus  ResponseStatus
	ResponseMessage string
	RespondedAt     *time.Time
}

type Meeting struct {
	ID             string
	Title          string
	Description    string
	OrganizerID    string
	OrganizerName  string
	OrganizerEmail string

	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int

	LocationType     LocationType
	PhysicalAddress  string
	PhysicalLandmark string
	VirtualPlatform  VirtualPlatform
	VirtualLink      string
	VirtualMeetingID string
	VirtualPasscode  string

	Status    Status
	IsPrivate bool
	Notes     string
	IsDeleted bool

	Participants []Participant
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LocationDisplay is a human readable location line.
func (m *Meeting) LocationDisplay() string {
	switch m.LocationType {
	case LocationPhysical:
		if m.PhysicalAddress == "" {
			return "Physical location TBD"
		}
		return m.PhysicalAddress
	case LocationVirtual:
		return platformNames[m.VirtualPlatform] + " Meeting"
	default:
		return "Hybrid: " + m.PhysicalAddress + " + " + platformNames[m.VirtualPlatform]
	}
}

// ParticipantIDs excludes the organizer.
func (m *Meeting) ParticipantIDs() []string {
	ids := make([]string, len(m.Participants))
	for i, p := range m.Participants {
		ids[i] = p.UserID
	}
	return ids
}

// Attendees returns the organizer followed by every participant.
func (m *Meeting) Attendees() []string {
	return append([]string{m.OrganizerID}, m.ParticipantIDs()...)
}

func (m *Meeting) HasParticipant(userID string) bool {
	for _, p := range m.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// CanView reports whether userID organizes or attends the meeting.
func (m *Meeting) CanView(userID string) bool {
	return m.OrganizerID == userID || m.HasParticipant(userID)
}

func (m *Meeting) validate() error {
	if m.Title == "" {
		return ErrTitleRequired
	}
	if !m.EndTime.After(m.StartTime) {
		return ErrInvalidTimeRange
	}
	if m.DurationMinutes < MinDurationMinutes || m.DurationMinutes > MaxDurationMinutes {
		return ErrInvalidDuration
	}

	switch m.LocationType {
	case LocationPhysical, LocationVirtual, LocationHybrid:
	default:
		return ErrInvalidLocationType
	}
	if m.LocationType != LocationVirtual && m.PhysicalAddress == "" {
		return ErrAddressRequired
	}
	if m.LocationType != LocationPhysical && m.VirtualLink == "" && m.VirtualPlatform == "" {
		return ErrVirtualDetailsRequired
	}
	return nil
}

// Filter lists meetings visible to UserID.
type Filter struct {
	UserID      string
	Status      string
	StartFrom   *time.Time // start_time >= StartFrom
	StartBefore *time.Time // start_time < StartBefore
	Page        int
	PageSize    int
	SortOrder   string
}

// ConflictError rejects a create or update whose time collides with someone's calendar.
type ConflictError struct {
	Report *scheduling.AggregateReport
}

func (e *ConflictError) Error() string {
	return ErrConflicts.Message
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflicts
}
