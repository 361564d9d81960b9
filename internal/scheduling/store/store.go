// Package store adapts the meeting, availability and user repositories to the
// scheduling engine's DataSource.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/availability"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/meeting"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/user"
)

type MeetingFinder interface {
	FindForPerson(ctx context.Context, personID string, from, to time.Time, excludeID string) ([]*meeting.Meeting, error)
}

type AvailabilityReader interface {
	ListLiveWindows(ctx context.Context, userID string, dayOfWeek int, asOf time.Time) ([]*availability.Window, error)
	ListBlockedTimes(ctx context.Context, filter availability.BlockedTimeFilter) ([]*availability.BlockedTime, error)
}

type UserGetter interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type Store struct {
	meetings     MeetingFinder
	availability AvailabilityReader
	users        UserGetter
	defaultLoc   *time.Location
}

var _ scheduling.DataSource = (*Store)(nil)

// New builds a Store; people without a usable timezone get defaultLoc.
func New(meetings MeetingFinder, avail AvailabilityReader, users UserGetter, defaultLoc *time.Location) *Store {
	return &Store{
		meetings:     meetings,
		availability: avail,
		users:        users,
		defaultLoc:   defaultLoc,
	}
}

func (s *Store) FindMeetingsForPerson(ctx context.Context, personID string, within scheduling.Window, excludeMeetingID string) ([]scheduling.MeetingRef, error) {
	meetings, err := s.meetings.FindForPerson(ctx, personID, within.Start, within.End, excludeMeetingID)
	if err != nil {
		return nil, err
	}
	refs := make([]scheduling.MeetingRef, len(meetings))
	for i, m := range meetings {
		refs[i] = scheduling.MeetingRef{
			ID:          m.ID,
			Title:       m.Title,
			OrganizerID: m.OrganizerID,
			Start:       m.StartTime,
			End:         m.EndTime,
			Status:      string(m.Status),
			Deleted:     m.IsDeleted,
		}
	}
	return refs, nil
}

func (s *Store) FindBlockedTimesForPerson(ctx context.Context, personID string, within scheduling.Window) ([]scheduling.BlockedRef, error) {
	items, err := s.availability.ListBlockedTimes(ctx, availability.BlockedTimeFilter{
		UserID:      personID,
		EndsAfter:   &within.Start,
		StartsUntil: &within.End,
	})
	if err != nil {
		return nil, err
	}
	refs := make([]scheduling.BlockedRef, len(items))
	for i, b := range items {
		refs[i] = scheduling.BlockedRef{
			ID:          b.ID,
			Start:       b.StartTime,
			End:         b.EndTime,
			Reason:      string(b.Reason),
			Description: b.Description,
		}
	}
	return refs, nil
}

func (s *Store) FindLiveAvailability(ctx context.Context, personID string, weekday int, asOf time.Time) ([]scheduling.AvailabilityWindow, error) {
	windows, err := s.availability.ListLiveWindows(ctx, personID, weekday, asOf)
	if err != nil {
		return nil, err
	}
	out := make([]scheduling.AvailabilityWindow, len(windows))
	for i, w := range windows {
		out[i] = scheduling.AvailabilityWindow{
			ID:             w.ID,
			DayOfWeek:      w.DayOfWeek,
			Start:          w.StartTime,
			End:            w.EndTime,
			EffectiveFrom:  w.EffectiveFrom,
			EffectiveUntil: w.EffectiveUntil,
			Active:         w.IsActive,
		}
	}
	return out, nil
}

func (s *Store) ResolvePerson(ctx context.Context, personID string) (scheduling.Person, error) {
	u, err := s.users.GetByID(ctx, personID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return scheduling.Person{}, scheduling.ErrPersonNotFound
		}
		return scheduling.Person{}, err
	}
	return scheduling.Person{
		ID:       u.ID,
		Name:     u.Name(),
		Location: u.Location(s.defaultLoc),
	}, nil
}

// UserLocation returns the person's zone, or the default one when their
// stored zone is unusable.
func (s *Store) UserLocation(ctx context.Context, userID string) (*time.Location, error) {
	p, err := s.ResolvePerson(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.Location, nil
}
