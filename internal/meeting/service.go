package meeting

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/notification"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling"
)

type CreateRequest struct {
	OrganizerID     string
	Title           string
	Description     string
	StartTime       time.Time
	EndTime         *time.Time // derived from DurationMinutes when nil
	DurationMinutes int        // defaults to 30

	LocationType     LocationType // defaults to virtual
	PhysicalAddress  string
	PhysicalLandmark string
	VirtualPlatform  VirtualPlatform
	VirtualLink      string
	VirtualMeetingID string
	VirtualPasscode  string

	ParticipantIDs []string
	IsPrivate      bool
	Notes          string

	CheckConflicts *bool // defaults to true
	ForceCreate    bool
}

// UpdateRequest carries optional changes; nil fields are left untouched.
type UpdateRequest struct {
	Title           *string
	Description     *string
	StartTime       *time.Time
	EndTime         *time.Time
	DurationMinutes *int

	LocationType     *LocationType
	PhysicalAddress  *string
	PhysicalLandmark *string
	VirtualPlatform  *VirtualPlatform
	VirtualLink      *string
	VirtualMeetingID *string
	VirtualPasscode  *string

	ParticipantIDs *[]string
	Status         *Status
	IsPrivate      *bool
	Notes          *string

	CheckConflicts *bool
	ForceCreate    bool
}

// Notifier receives lifecycle events after they are persisted.
type Notifier interface {
	Notify(ctx context.Context, kind notification.Kind, subject notification.Subject, recipientIDs []string) error
}

type Service interface {
	// Create fails with a *ConflictError when conflict checking is on and anyone is busy.
	Create(ctx context.Context, req CreateRequest) (*Meeting, error)
	// GetByID only returns meetings viewerID organizes or attends.
	GetByID(ctx context.Context, id, viewerID string) (*Meeting, error)
	List(ctx context.Context, filter Filter) ([]*Meeting, int, error)
	Update(ctx context.Context, id, userID string, req UpdateRequest) (*Meeting, error)
	Cancel(ctx context.Context, id, userID string) error
	Respond(ctx context.Context, id, userID string, status ResponseStatus, message string) (*Meeting, error)
}

type service struct {
	repo       Repository
	scheduling scheduling.Service
	notifier   Notifier
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(repo Repository, sched scheduling.Service, notifier Notifier, logger *zap.Logger) Service {
	return &service{
		repo:       repo,
		scheduling: sched,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// uniqueParticipants drops blanks, duplicates and the organizer.
func uniqueParticipants(organizerID string, ids []string) []string {
	out := []string{}
	seen := map[string]bool{organizerID: true}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func participantsOf(ids []string) []Participant {
	out := make([]Participant, len(ids))
	for i, id := range ids {
		out[i] = Participant{UserID: id, ResponseStatus: ResponsePending}
	}
	return out
}

func minutesBetween(start, end time.Time) int {
	return int(end.Sub(start) / time.Minute)
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Meeting, error) {
	if !req.StartTime.After(s.now()) {
		return nil, ErrStartTimePast
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = scheduling.DefaultDurationMinutes
	}
	end := req.StartTime.Add(time.Duration(duration) * time.Minute)
	if req.EndTime != nil {
		end = *req.EndTime
		duration = minutesBetween(req.StartTime, end)
	}

	locType := req.LocationType
	if locType == "" {
		locType = LocationVirtual
	}

	participantIDs := uniqueParticipants(req.OrganizerID, req.ParticipantIDs)
	m := &Meeting{
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		OrganizerID:      req.OrganizerID,
		StartTime:        req.StartTime,
		EndTime:          end,
		DurationMinutes:  duration,
		LocationType:     locType,
		PhysicalAddress:  req.PhysicalAddress,
		PhysicalLandmark: req.PhysicalLandmark,
		VirtualPlatform:  req.VirtualPlatform,
		VirtualLink:      req.VirtualLink,
		VirtualMeetingID: req.VirtualMeetingID,
		VirtualPasscode:  req.VirtualPasscode,
		Status:           StatusScheduled,
		IsPrivate:        req.IsPrivate,
		Notes:            req.Notes,
		Participants:     participantsOf(participantIDs),
	}
	if err := m.validate(); err != nil {
		return nil, err
	}

	if checkEnabled(req.CheckConflicts, req.ForceCreate) {
		if err := s.ensureNoConflicts(ctx, m, ""); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	// Reload for participant names and organizer details.
	created, err := s.repo.GetByID(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, notification.KindInvitation, created, created.ParticipantIDs())
	return created, nil
}

func checkEnabled(check *bool, force bool) bool {
	if force {
		return false
	}
	return check == nil || *check
}

// ensureNoConflicts runs the multi-party check for m, ignoring excludeID.
func (s *service) ensureNoConflicts(ctx context.Context, m *Meeting, excludeID string) error {
	report, err := s.scheduling.CheckConflicts(ctx, m.OrganizerID, scheduling.Candidate{
		Start:            m.StartTime,
		End:              m.EndTime,
		DurationMinutes:  m.DurationMinutes,
		ParticipantIDs:   m.ParticipantIDs(),
		ExcludeMeetingID: excludeID,
	})
	if err != nil {
		return err
	}
	if len(report.SkippedParticipantIDs) > 0 {
		s.logger.Warn("conflict check skipped unknown participants",
			zap.String("organizer_id", m.OrganizerID),
			zap.Strings("participant_ids", report.SkippedParticipantIDs),
		)
	}
	if report.HasAnyConflicts {
		return &ConflictError{Report: report}
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id, viewerID string) (*Meeting, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.IsDeleted || !m.CanView(viewerID) {
		return nil, ErrNotFound
	}
	return m, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Meeting, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id, userID string, req UpdateRequest) (*Meeting, error) {
	m, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if m.OrganizerID != userID {
		return nil, ErrNotOrganizer
	}

	rescheduled := req.StartTime != nil || req.EndTime != nil || req.DurationMinutes != nil
	if req.StartTime != nil && !req.StartTime.After(s.now()) {
		return nil, ErrStartTimePast
	}
	if req.StartTime != nil {
		m.StartTime = *req.StartTime
	}
	switch {
	case req.EndTime != nil:
		m.EndTime = *req.EndTime
		m.DurationMinutes = minutesBetween(m.StartTime, m.EndTime)
	case rescheduled:
		if req.DurationMinutes != nil {
			m.DurationMinutes = *req.DurationMinutes
		}
		m.EndTime = m.StartTime.Add(time.Duration(m.DurationMinutes) * time.Minute)
	}

	setString(&m.Title, req.Title)
	setString(&m.Description, req.Description)
	setString(&m.PhysicalAddress, req.PhysicalAddress)
	setString(&m.PhysicalLandmark, req.PhysicalLandmark)
	setString(&m.VirtualLink, req.VirtualLink)
	setString(&m.VirtualMeetingID, req.VirtualMeetingID)
	setString(&m.VirtualPasscode, req.VirtualPasscode)
	setString(&m.Notes, req.Notes)
	if req.LocationType != nil {
		m.LocationType = *req.LocationType
	}
	if req.VirtualPlatform != nil {
		m.VirtualPlatform = *req.VirtualPlatform
	}
	if req.IsPrivate != nil {
		m.IsPrivate = *req.IsPrivate
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		m.Status = *req.Status
	}
	m.Title = strings.TrimSpace(m.Title)

	previous := m.ParticipantIDs()
	var participantIDs []string
	if req.ParticipantIDs != nil {
		participantIDs = uniqueParticipants(m.OrganizerID, *req.ParticipantIDs)
		m.Participants = participantsOf(participantIDs)
	}

	if err := m.validate(); err != nil {
		return nil, err
	}

	if (rescheduled || req.ParticipantIDs != nil) && checkEnabled(req.CheckConflicts, req.ForceCreate) {
		if err := s.ensureNoConflicts(ctx, m, m.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, m, participantIDs); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, notification.KindUpdate, updated, union(previous, updated.ParticipantIDs()))
	return updated, nil
}

func (s *service) Cancel(ctx context.Context, id, userID string) error {
	m, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if m.OrganizerID != userID {
		return ErrNotOrganizer
	}
	if m.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}

	if err := s.repo.Cancel(ctx, id); err != nil {
		return err
	}

	m.Status = StatusCancelled
	m.IsDeleted = true
	s.notify(ctx, notification.KindCancellation, m, m.ParticipantIDs())
	return nil
}

func (s *service) Respond(ctx context.Context, id, userID string, status ResponseStatus, message string) (*Meeting, error) {
	if !status.Valid() {
		return nil, ErrInvalidResponse
	}

	m, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !m.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	if err := s.repo.Respond(ctx, id, userID, status, message, s.now().UTC()); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, notification.KindResponse, updated, []string{updated.OrganizerID})
	return updated, nil
}

// notify hands the event to the notifier. Failures are logged, not returned:
// the meeting change is already committed.
func (s *service) notify(ctx context.Context, kind notification.Kind, m *Meeting, recipients []string) {
	if s.notifier == nil || len(recipients) == 0 {
		return
	}
	err := s.notifier.Notify(ctx, kind, Subject(m), recipients)
	if err != nil {
		s.logger.Error("meeting notification failed",
			zap.String("kind", string(kind)),
			zap.String("meeting_id", m.ID),
			zap.Error(err),
		)
	}
}

// Subject summarizes m for notification events.
func Subject(m *Meeting) notification.Subject {
	return notification.Subject{
		MeetingID:   m.ID,
		Title:       m.Title,
		OrganizerID: m.OrganizerID,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		Location:    m.LocationDisplay(),
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func union(a, b []string) []string {
	out := append([]string{}, a...)
	seen := map[string]bool{}
	for _, id := range a {
		seen[id] = true
	}
	for _, id := range b {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
