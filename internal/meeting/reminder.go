package meeting

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/notification"
)

type ReminderConfig struct {
	// Horizon is the longest lead any attendee may choose; meetings further
	// out are not inspected.
	Horizon  time.Duration
	Interval time.Duration
}

// LeadSource reports how long before a meeting a user wants reminding.
type LeadSource interface {
	ReminderLead(ctx context.Context, userID string) (time.Duration, error)
}

// ReminderWorker periodically reminds each attendee once their own lead
// time before a meeting is reached.
type ReminderWorker struct {
	repo     Repository
	notifier Notifier
	leads    LeadSource
	logger   *zap.Logger
	horizon  time.Duration
	interval time.Duration
	now      func() time.Time
}

// NewReminderWorker uses the default lead for everyone when leads is nil.
func NewReminderWorker(repo Repository, notifier Notifier, leads LeadSource, logger *zap.Logger, cfg ReminderConfig) *ReminderWorker {
	if cfg.Horizon <= 0 {
		cfg.Horizon = notification.MaxReminderMinutes * time.Minute
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &ReminderWorker{
		repo:     repo,
		notifier: notifier,
		leads:    leads,
		logger:   logger,
		horizon:  cfg.Horizon,
		interval: cfg.Interval,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (w *ReminderWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.Error("reminder batch failed", zap.Error(err))
			}
		}
	}
}

// RunOnce reminds every attendee whose lead time has been reached and
// returns how many were reminded. A meeting is marked reminded once all of
// its attendees are.
func (w *ReminderWorker) RunOnce(ctx context.Context) (int, error) {
	now := w.now().UTC()
	due, err := w.repo.FindDueReminders(ctx, now, now.Add(w.horizon))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, m := range due {
		done, err := w.repo.RemindedAttendees(ctx, m.ID)
		if err != nil {
			return sent, err
		}

		until := m.StartTime.Sub(now)
		ready := []string{}
		waiting := 0
		for _, id := range m.Attendees() {
			if done[id] {
				continue
			}
			if until <= w.lead(ctx, id) {
				ready = append(ready, id)
			} else {
				waiting++
			}
		}

		if len(ready) > 0 {
			if err := w.notifier.Notify(ctx, notification.KindReminder, Subject(m), ready); err != nil {
				// Left unmarked so the next tick retries.
				w.logger.Warn("reminder not sent", zap.String("meeting_id", m.ID), zap.Error(err))
				continue
			}
			if err := w.repo.MarkAttendeesReminded(ctx, m.ID, ready, now); err != nil {
				return sent, err
			}
			sent += len(ready)
		}

		if waiting == 0 {
			if err := w.repo.MarkReminded(ctx, m.ID, now); err != nil {
				return sent, err
			}
		}
	}
	return sent, nil
}

func (w *ReminderWorker) lead(ctx context.Context, userID string) time.Duration {
	def := notification.DefaultReminderMinutes * time.Minute
	if w.leads == nil {
		return def
	}
	d, err := w.leads.ReminderLead(ctx, userID)
	if err != nil {
		w.logger.Warn("reminder lead lookup failed", zap.String("user_id", userID), zap.Error(err))
		return def
	}
	return min(d, w.horizon)
}
