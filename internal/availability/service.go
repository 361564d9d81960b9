package availability

import (
	"context"
	"time"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling"
)

type CreateWindowRequest struct {
	DayOfWeek      int
	StartTime      scheduling.TimeOfDay
	EndTime        scheduling.TimeOfDay
	EffectiveFrom  *time.Time
	EffectiveUntil *time.Time
	IsActive       *bool // defaults to true
}

type UpdateWindowRequest struct {
	DayOfWeek      *int
	StartTime      *scheduling.TimeOfDay
	EndTime        *scheduling.TimeOfDay
	EffectiveFrom  *time.Time
	EffectiveUntil *time.Time
	IsActive       *bool
}

type CreateBlockedTimeRequest struct {
	StartTime   time.Time
	EndTime     time.Time
	Reason      Reason // defaults to busy
	Description string
	IsAllDay    bool
}

type Service interface {
	ListWindows(ctx context.Context, userID string) ([]*Window, error)
	CreateWindow(ctx context.Context, userID string, req CreateWindowRequest) (*Window, error)
	UpdateWindow(ctx context.Context, id, userID string, req UpdateWindowRequest) (*Window, error)
	DeleteWindow(ctx context.Context, id, userID string) error
	// SetBusinessHours replaces the user's Monday to Friday windows with one window per day.
	SetBusinessHours(ctx context.Context, userID string, start, end scheduling.TimeOfDay) ([]*Window, error)

	ListUpcomingBlockedTimes(ctx context.Context, userID string) ([]*BlockedTime, error)
	CreateBlockedTime(ctx context.Context, userID string, req CreateBlockedTimeRequest) (*BlockedTime, error)
	DeleteBlockedTime(ctx context.Context, id, userID string) error

	// UserOverview returns active windows and blocked times within UpcomingHorizon.
	UserOverview(ctx context.Context, userID string) (*Overview, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) ListWindows(ctx context.Context, userID string) ([]*Window, error) {
	return s.repo.ListWindows(ctx, userID, false)
}

func (s *service) CreateWindow(ctx context.Context, userID string, req CreateWindowRequest) (*Window, error) {
	w := &Window{
		UserID:         userID,
		DayOfWeek:      req.DayOfWeek,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		EffectiveFrom:  req.EffectiveFrom,
		EffectiveUntil: req.EffectiveUntil,
		IsActive:       true,
	}
	if req.IsActive != nil {
		w.IsActive = *req.IsActive
	}
	if err := w.validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateWindow(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// ownedWindow loads a window and checks it belongs to userID.
func (s *service) ownedWindow(ctx context.Context, id, userID string) (*Window, error) {
	w, err := s.repo.GetWindow(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID {
		return nil, ErrPermissionDenied
	}
	return w, nil
}

func (s *service) UpdateWindow(ctx context.Context, id, userID string, req UpdateWindowRequest) (*Window, error) {
	w, err := s.ownedWindow(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.DayOfWeek != nil {
		w.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		w.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		w.EndTime = *req.EndTime
	}
	if req.EffectiveFrom != nil {
		w.EffectiveFrom = req.EffectiveFrom
	}
	if req.EffectiveUntil != nil {
		w.EffectiveUntil = req.EffectiveUntil
	}
	if req.IsActive != nil {
		w.IsActive = *req.IsActive
	}
	if err := w.validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateWindow(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *service) DeleteWindow(ctx context.Context, id, userID string) error {
	if _, err := s.ownedWindow(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.DeleteWindow(ctx, id)
}

func (s *service) SetBusinessHours(ctx context.Context, userID string, start, end scheduling.TimeOfDay) ([]*Window, error) {
	if end <= start {
		return nil, ErrInvalidTimeRange
	}

	windows := make([]*Window, 0, 5)
	for day := 0; day < 5; day++ {
		windows = append(windows, &Window{
			UserID:    userID,
			DayOfWeek: day,
			StartTime: start,
			EndTime:   end,
			IsActive:  true,
		})
	}

	if err := s.repo.ReplaceWeekdayWindows(ctx, userID, windows); err != nil {
		return nil, err
	}
	return windows, nil
}

func (s *service) ListUpcomingBlockedTimes(ctx context.Context, userID string) ([]*BlockedTime, error) {
	now := s.now()
	return s.repo.ListBlockedTimes(ctx, BlockedTimeFilter{UserID: userID, EndsAfter: &now})
}

func (s *service) CreateBlockedTime(ctx context.Context, userID string, req CreateBlockedTimeRequest) (*BlockedTime, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeRange
	}
	reason := req.Reason
	if reason == "" {
		reason = ReasonBusy
	}
	if !reason.Valid() {
		return nil, ErrInvalidReason
	}

	b := &BlockedTime{
		UserID:      userID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Reason:      reason,
		Description: req.Description,
		IsAllDay:    req.IsAllDay,
	}
	if err := s.repo.CreateBlockedTime(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) DeleteBlockedTime(ctx context.Context, id, userID string) error {
	b, err := s.repo.GetBlockedTime(ctx, id)
	if err != nil {
		return err
	}
	if b.UserID != userID {
		return ErrPermissionDenied
	}
	return s.repo.DeleteBlockedTime(ctx, id)
}

func (s *service) UserOverview(ctx context.Context, userID string) (*Overview, error) {
	windows, err := s.repo.ListWindows(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	now := s.now()
	horizon := now.Add(UpcomingHorizon)
	blocked, err := s.repo.ListBlockedTimes(ctx, BlockedTimeFilter{
		UserID:      userID,
		EndsAfter:   &now,
		StartsUntil: &horizon,
	})
	if err != nil {
		return nil, err
	}

	return &Overview{Windows: windows, BlockedTimes: blocked}, nil
}
