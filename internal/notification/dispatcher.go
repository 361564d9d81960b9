package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Subject describes the meeting an event is about.
type Subject struct {
	MeetingID   string    `json:"id"`
	Title       string    `json:"title"`
	OrganizerID string    `json:"organizer_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location"`
}

type Recipient struct {
	UserID   string    `json:"user_id"`
	Channels []Channel `json:"channels"`
}

// ZoneLookup resolves the zone a user's quiet hours are read in.
type ZoneLookup interface {
	UserLocation(ctx context.Context, userID string) (*time.Location, error)
}

// Dispatcher gates recipients through their preferences and publishes one
// event per call. Actual email and SMS delivery happens downstream.
type Dispatcher struct {
	prefs     Service
	zones     ZoneLookup
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewDispatcher reads quiet hours in UTC when zones is nil.
func NewDispatcher(prefs Service, zones ZoneLookup, publisher Publisher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		prefs:     prefs,
		zones:     zones,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Notify publishes kind for subject to every recipient that allows at least
// one channel and is outside their quiet hours. Nothing is published when
// nobody qualifies.
func (d *Dispatcher) Notify(ctx context.Context, kind Kind, subject Subject, recipientIDs []string) error {
	now := d.now().UTC()
	recipients := make([]Recipient, 0, len(recipientIDs))
	seen := map[string]bool{}

	for _, id := range recipientIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		p, err := d.prefs.Get(ctx, id)
		if err != nil {
			return err
		}
		channels := p.AllowedChannels(kind)
		if len(channels) == 0 {
			continue
		}
		if p.QuietHoursEnabled && p.InQuietHours(now, d.location(ctx, id)) {
			d.logger.Debug("recipient in quiet hours",
				zap.String("user_id", id),
				zap.String("kind", string(kind)),
			)
			continue
		}
		recipients = append(recipients, Recipient{UserID: id, Channels: channels})
	}

	if len(recipients) == 0 {
		d.logger.Debug("notification suppressed by preferences",
			zap.String("kind", string(kind)),
			zap.String("meeting_id", subject.MeetingID),
		)
		return nil
	}

	e := Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		MeetingID:  subject.MeetingID,
		OccurredAt: now,
		Subject:    subject,
		Recipients: recipients,
	}
	if err := d.publisher.Publish(ctx, e); err != nil {
		return err
	}

	d.logger.Info("notification published",
		zap.String("event_id", e.ID),
		zap.String("kind", string(kind)),
		zap.String("meeting_id", subject.MeetingID),
		zap.Int("recipients", len(recipients)),
	)
	return nil
}

// location falls back to UTC when the zone cannot be resolved.
func (d *Dispatcher) location(ctx context.Context, userID string) *time.Location {
	if d.zones == nil {
		return time.UTC
	}
	loc, err := d.zones.UserLocation(ctx, userID)
	if err != nil || loc == nil {
		d.logger.Warn("cannot resolve recipient zone", zap.String("user_id", userID), zap.Error(err))
		return time.UTC
	}
	return loc
}
