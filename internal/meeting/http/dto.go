package http

import (
	"time"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/meeting"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/pkg/request"
)

const dateLayout = "2006-01-02"

// ListMeetingsRequest defines query parameters for listing meetings.
type ListMeetingsRequest struct {
	request.ListParams
	Upcoming bool   `form:"upcoming"`
	Status   string `form:"status" binding:"omitempty,oneof=scheduled in_progress completed cancelled"`
	DateFrom string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
}

// Filter resolves the date bounds in loc. DateTo is inclusive.
func (r *ListMeetingsRequest) Filter(userID string, now time.Time, loc *time.Location) (meeting.Filter, error) {
	f := meeting.Filter{
		UserID:    userID,
		Status:    r.Status,
		Page:      r.Page,
		PageSize:  r.PageSize,
		SortOrder: r.SortOrder,
	}
	if r.Upcoming {
		n := now
		f.StartFrom = &n
	}
	if r.DateFrom != "" {
		from, err := time.ParseInLocation(dateLayout, r.DateFrom, loc)
		if err != nil {
			return f, err
		}
		if f.StartFrom == nil || from.After(*f.StartFrom) {
			f.StartFrom = &from
		}
	}
	if r.DateTo != "" {
		to, err := time.ParseInLocation(dateLayout, r.DateTo, loc)
		if err != nil {
			return f, err
		}
		before := to.AddDate(0, 0, 1)
		f.StartBefore = &before
	}
	if f.StartFrom != nil && f.StartBefore != nil && !f.StartBefore.After(*f.StartFrom) {
		return f, meeting.ErrInvalidTimeRange
	}
	return f, nil
}

type CreateMeetingRequest struct {
	Title           string     `json:"title" binding:"required,max=200"`
	Description     string     `json:"description"`
	StartTime       time.Time  `json:"start_time" binding:"required"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes int        `json:"duration_minutes" binding:"omitempty,min=5,max=480"`

	LocationType     string `json:"location_type" binding:"omitempty,oneof=physical virtual hybrid"`
	PhysicalAddress  string `json:"physical_address"`
	PhysicalLandmark string `json:"physical_landmark"`
	VirtualPlatform  string `json:"virtual_platform" binding:"omitempty,oneof=zoom google_meet ms_teams other"`
	VirtualLink      string `json:"virtual_link" binding:"omitempty,url"`
	VirtualMeetingID string `json:"virtual_meeting_id"`
	VirtualPasscode  string `json:"virtual_passcode"`

	ParticipantIDs []string `json:"participant_ids" binding:"omitempty,dive,uuid"`
	IsPrivate      bool     `json:"is_private"`
	Notes          string   `json:"notes"`

	CheckConflicts *bool `json:"check_conflicts"`
	ForceCreate    bool  `json:"force_create"`
}

func (r *CreateMeetingRequest) ServiceRequest(organizerID string) meeting.CreateRequest {
	return meeting.CreateRequest{
		OrganizerID:      organizerID,
		Title:            r.Title,
		Description:      r.Description,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		DurationMinutes:  r.DurationMinutes,
		LocationType:     meeting.LocationType(r.LocationType),
		PhysicalAddress:  r.PhysicalAddress,
		PhysicalLandmark: r.PhysicalLandmark,
		VirtualPlatform:  meeting.VirtualPlatform(r.VirtualPlatform),
		VirtualLink:      r.VirtualLink,
		VirtualMeetingID: r.VirtualMeetingID,
		VirtualPasscode:  r.VirtualPasscode,
		ParticipantIDs:   r.ParticipantIDs,
		IsPrivate:        r.IsPrivate,
		Notes:            r.Notes,
		CheckConflicts:   r.CheckConflicts,
		ForceCreate:      r.ForceCreate,
	}
}

type UpdateMeetingRequest struct {
	Title           *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description     *string    `json:"description"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes *int       `json:"duration_minutes" binding:"omitempty,min=5,max=480"`

	LocationType     *string `json:"location_type" binding:"omitempty,oneof=physical virtual hybrid"`
	PhysicalAddress  *string `json:"physical_address"`
	PhysicalLandmark *string `json:"physical_landmark"`
	VirtualPlatform  *string `json:"virtual_platform" binding:"omitempty,oneof=zoom google_meet ms_teams other"`
	VirtualLink      *string `json:"virtual_link"`
	VirtualMeetingID *string `json:"virtual_meeting_id"`
	VirtualPasscode  *string `json:"virtual_passcode"`

	ParticipantIDs *[]string `json:"participant_ids" binding:"omitempty,dive,uuid"`
	Status         *string   `json:"status" binding:"omitempty,oneof=scheduled in_progress completed cancelled"`
	IsPrivate      *bool     `json:"is_private"`
	Notes          *string   `json:"notes"`

	CheckConflicts *bool `json:"check_conflicts"`
	ForceCreate    bool  `json:"force_create"`
}

func (r *UpdateMeetingRequest) ServiceRequest() meeting.UpdateRequest {
	req := meeting.UpdateRequest{
		Title:            r.Title,
		Description:      r.Description,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		DurationMinutes:  r.DurationMinutes,
		PhysicalAddress:  r.PhysicalAddress,
		PhysicalLandmark: r.PhysicalLandmark,
		VirtualLink:      r.VirtualLink,
		VirtualMeetingID: r.VirtualMeetingID,
		VirtualPasscode:  r.VirtualPasscode,
		ParticipantIDs:   r.ParticipantIDs,
		IsPrivate:        r.IsPrivate,
		Notes:            r.Notes,
		CheckConflicts:   r.CheckConflicts,
		ForceCreate:      r.ForceCreate,
	}
	if r.LocationType != nil {
		lt := meeting.LocationType(*r.LocationType)
		req.LocationType = &lt
	}
	if r.VirtualPlatform != nil {
		vp := meeting.VirtualPlatform(*r.VirtualPlatform)
		req.VirtualPlatform = &vp
	}
	if r.Status != nil {
		s := meeting.Status(*r.Status)
		req.Status = &s
	}
	return req
}

type RespondRequest struct {
	ResponseStatus string `json:"response_status" binding:"required,oneof=accepted declined tentative"`
	Message        string `json:"message" binding:"max=500"`
}

type UserTag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type ParticipantResponse struct {
	User            UserTag    `json:"user"`
	ResponseStatus  string     `json:"response_status"`
	ResponseMessage string     `json:"response_message,omitempty"`
	RespondedAt     *time.Time `json:"responded_at"`
}

type MeetingResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Organizer       UserTag   `json:"organizer"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`

	LocationType     string `json:"location_type"`
	LocationDisplay  string `json:"location_display"`
	PhysicalAddress  string `json:"physical_address,omitempty"`
	PhysicalLandmark string `json:"physical_landmark,omitempty"`
	VirtualPlatform  string `json:"virtual_platform,omitempty"`
	VirtualLink      string `json:"virtual_link,omitempty"`
	VirtualMeetingID string `json:"virtual_meeting_id,omitempty"`
	VirtualPasscode  string `json:"virtual_passcode,omitempty"`

	Status       string                `json:"status"`
	IsPrivate    bool                  `json:"is_private"`
	Notes        string                `json:"notes,omitempty"`
	Participants []ParticipantResponse `json:"participants"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func NewMeetingResponse(m *meeting.Meeting) MeetingResponse {
	participants := make([]ParticipantResponse, len(m.Participants))
	for i, p := range m.Participants {
		participants[i] = ParticipantResponse{
			User:            UserTag{ID: p.UserID, Name: p.Name, Email: p.Email},
			ResponseStatus:  string(p.ResponseStatus),
			ResponseMessage: p.ResponseMessage,
			RespondedAt:     p.RespondedAt,
		}
	}
	return MeetingResponse{
		ID:               m.ID,
		Title:            m.Title,
		Description:      m.Description,
		Organizer:        UserTag{ID: m.OrganizerID, Name: m.OrganizerName, Email: m.OrganizerEmail},
		StartTime:        m.StartTime,
		EndTime:          m.EndTime,
		DurationMinutes:  m.DurationMinutes,
		LocationType:     string(m.LocationType),
		LocationDisplay:  m.LocationDisplay(),
		PhysicalAddress:  m.PhysicalAddress,
		PhysicalLandmark: m.PhysicalLandmark,
		VirtualPlatform:  string(m.VirtualPlatform),
		VirtualLink:      m.VirtualLink,
		VirtualMeetingID: m.VirtualMeetingID,
		VirtualPasscode:  m.VirtualPasscode,
		Status:           string(m.Status),
		IsPrivate:        m.IsPrivate,
		Notes:            m.Notes,
		Participants:     participants,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func NewMeetingResponses(ms []*meeting.Meeting) []MeetingResponse {
	items := make([]MeetingResponse, len(ms))
	for i, m := range ms {
		items[i] = NewMeetingResponse(m)
	}
	return items
}
