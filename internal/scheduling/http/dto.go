package http

import (
	"sort"
	"time"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling"
)

const dateLayout = "2006-01-02"

type ConflictCheckRequest struct {
	StartTime        time.Time  `json:"start_time" binding:"required"`
	EndTime          *time.Time `json:"end_time"`
	DurationMinutes  int        `json:"duration_minutes" binding:"omitempty,min=5,max=480"`
	ParticipantIDs   []string   `json:"participant_ids" binding:"omitempty,dive,uuid"`
	ExcludeMeetingID string     `json:"exclude_meeting_id" binding:"omitempty,uuid"`
}

func (r *ConflictCheckRequest) Candidate() scheduling.Candidate {
	c := scheduling.Candidate{
		Start:            r.StartTime,
		DurationMinutes:  r.DurationMinutes,
		ParticipantIDs:   r.ParticipantIDs,
		ExcludeMeetingID: r.ExcludeMeetingID,
	}
	if r.EndTime != nil {
		c.End = *r.EndTime
	}
	return c
}

type SuggestionsRequest struct {
	PreferredDate   string   `json:"preferred_date" binding:"required,datetime=2006-01-02"`
	DurationMinutes int      `json:"duration_minutes" binding:"omitempty,min=5,max=480"`
	ParticipantIDs  []string `json:"participant_ids" binding:"omitempty,dive,uuid"`
	NumSuggestions  int      `json:"num_suggestions" binding:"omitempty,min=1,max=20"`
	DaysToSearch    int      `json:"days_to_search" binding:"omitempty,min=1,max=31"`
}

// Date keeps the calendar date; the suggester lays it out in the organizer's zone.
func (r *SuggestionsRequest) Date() (time.Time, error) {
	return time.Parse(dateLayout, r.PreferredDate)
}

type NextSlotRequest struct {
	After           *time.Time `json:"after"` // defaults to now
	DurationMinutes int        `json:"duration_minutes" binding:"omitempty,min=5,max=480"`
	ParticipantIDs  []string   `json:"participant_ids" binding:"omitempty,dive,uuid"`
	MaxDays         int        `json:"max_days" binding:"omitempty,min=1,max=60"`
}

type SlotResponse struct {
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Date            string    `json:"date"`
	TimeDisplay     string    `json:"time_display"`
	AllAvailable    bool      `json:"all_participants_available"`
}

func NewSlotResponse(s scheduling.Slot) SlotResponse {
	return SlotResponse{
		StartTime:       s.Start,
		EndTime:         s.End,
		DurationMinutes: s.DurationMinutes,
		Date:            s.Date,
		TimeDisplay:     s.TimeDisplay,
		AllAvailable:    s.AllAvailable,
	}
}

func NewSlotResponses(slots []scheduling.Slot) []SlotResponse {
	items := make([]SlotResponse, len(slots))
	for i, s := range slots {
		items[i] = NewSlotResponse(s)
	}
	return items
}

type ConflictingMeetingResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
}

type ConflictingBlockedTimeResponse struct {
	ID          string    `json:"id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Reason      string    `json:"reason"`
	Description string    `json:"description"`
}

type ConflictReportResponse struct {
	PersonID                string                           `json:"person_id"`
	HasConflicts            bool                             `json:"has_conflicts"`
	WithinAvailability      bool                             `json:"within_availability"`
	ConflictingMeetings     []ConflictingMeetingResponse     `json:"conflicting_meetings"`
	ConflictingBlockedTimes []ConflictingBlockedTimeResponse `json:"conflicting_blocked_times"`
}

func NewConflictReportResponse(r *scheduling.ConflictReport) ConflictReportResponse {
	resp := ConflictReportResponse{
		PersonID:                r.PersonID,
		HasConflicts:            r.HasConflicts,
		WithinAvailability:      r.WithinAvailability,
		ConflictingMeetings:     make([]ConflictingMeetingResponse, len(r.ConflictingMeetings)),
		ConflictingBlockedTimes: make([]ConflictingBlockedTimeResponse, len(r.ConflictingBlockedTimes)),
	}
	for i, m := range r.ConflictingMeetings {
		resp.ConflictingMeetings[i] = ConflictingMeetingResponse{
			ID: m.ID, Title: m.Title, StartTime: m.Start, EndTime: m.End, Status: m.Status,
		}
	}
	for i, b := range r.ConflictingBlockedTimes {
		resp.ConflictingBlockedTimes[i] = ConflictingBlockedTimeResponse{
			ID: b.ID, StartTime: b.Start, EndTime: b.End, Reason: b.Reason, Description: b.Description,
		}
	}
	return resp
}

type ParticipantConflictResponse struct {
	UserID string                 `json:"user_id"`
	Name   string                 `json:"name"`
	Report ConflictReportResponse `json:"conflicts"`
}

type AggregateReportResponse struct {
	HasAnyConflicts       bool                          `json:"has_any_conflicts"`
	OrganizerConflicts    ConflictReportResponse        `json:"organizer_conflicts"`
	ParticipantConflicts  []ParticipantConflictResponse `json:"participant_conflicts"`
	SuggestedAlternatives []SlotResponse                `json:"suggested_alternatives"`
	SkippedParticipants   []string                      `json:"skipped_participant_ids,omitempty"`
	DuplicateParticipants []string                      `json:"duplicate_participant_ids,omitempty"`
}

// NewAggregateReportResponse lists participant conflicts ordered by user id.
func NewAggregateReportResponse(r *scheduling.AggregateReport) AggregateReportResponse {
	resp := AggregateReportResponse{
		HasAnyConflicts:       r.HasAnyConflicts,
		ParticipantConflicts:  make([]ParticipantConflictResponse, 0, len(r.ParticipantConflicts)),
		SuggestedAlternatives: NewSlotResponses(r.SuggestedAlternatives),
		SkippedParticipants:   r.SkippedParticipantIDs,
		DuplicateParticipants: r.DuplicateParticipantIDs,
	}
	if r.OrganizerReport != nil {
		resp.OrganizerConflicts = NewConflictReportResponse(r.OrganizerReport)
	}
	for _, pc := range r.ParticipantConflicts {
		resp.ParticipantConflicts = append(resp.ParticipantConflicts, ParticipantConflictResponse{
			UserID: pc.PersonID,
			Name:   pc.Name,
			Report: NewConflictReportResponse(pc.Report),
		})
	}
	sort.Slice(resp.ParticipantConflicts, func(i, j int) bool {
		return resp.ParticipantConflicts[i].UserID < resp.ParticipantConflicts[j].UserID
	})
	return resp
}
