package notification

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Get returns stored preferences, or the defaults when the user never saved any.
	Get(ctx context.Context, userID string) (*Preferences, error)
	Update(ctx context.Context, userID string, req UpdatePreferencesRequest) (*Preferences, error)
	// ReminderLead is how long before a meeting the user wants reminding.
	ReminderLead(ctx context.Context, userID string) (time.Duration, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, userID string) (*Preferences, error) {
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return DefaultPreferences(userID), nil
	}
	return p, err
}

func (s *service) Update(ctx context.Context, userID string, req UpdatePreferencesRequest) (*Preferences, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := req.apply(p); err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ReminderLead(ctx context.Context, userID string) (time.Duration, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	return p.ReminderLead(), nil
}
