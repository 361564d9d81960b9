package scheduling

import (
	"context"
	"errors"
	"time"
)

const DefaultNumSuggestions = 5

// SuggestRequest asks for slots; zero NumSuggestions and DaysToSearch take their defaults.
type SuggestRequest struct {
	OrganizerID     string
	ParticipantIDs  []string
	DurationMinutes int
	PreferredDate   time.Time
	NumSuggestions  int
	DaysToSearch    int
}

type NextSlotRequest struct {
	OrganizerID     string
	ParticipantIDs  []string
	DurationMinutes int
	After           time.Time
	MaxDays         int
}

// Service is the entry point the rest of the application uses.
type Service interface {
	CheckConflicts(ctx context.Context, organizerID string, cand Candidate) (*AggregateReport, error)
	PersonConflicts(ctx context.Context, personID string, start, end time.Time, excludeMeetingID string) (*ConflictReport, error)
	SuggestSlots(ctx context.Context, req SuggestRequest) ([]Slot, []string, error)
	FindNextAvailableSlot(ctx context.Context, req NextSlotRequest) (*Slot, []string, error)
}

type service struct {
	source     DataSource
	checker    *Checker
	aggregator *Aggregator
}

func NewService(source DataSource, opts Options) Service {
	checker := NewChecker(source, opts)
	return &service{
		source:     source,
		checker:    checker,
		aggregator: NewAggregator(source, checker),
	}
}

func (s *service) CheckConflicts(ctx context.Context, organizerID string, cand Candidate) (*AggregateReport, error) {
	organizer, err := s.resolveOrganizer(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	return s.aggregator.CheckMeetingConflicts(ctx, cand, organizer)
}

func (s *service) PersonConflicts(ctx context.Context, personID string, start, end time.Time, excludeMeetingID string) (*ConflictReport, error) {
	p, err := s.source.ResolvePerson(ctx, personID)
	if err != nil {
		if errors.Is(err, ErrPersonNotFound) {
			return nil, err
		}
		return nil, unavailable("resolve person", err)
	}
	return s.checker.GetAllConflicts(ctx, p, start, end, excludeMeetingID)
}

// SuggestSlots also returns the participant ids that could not be resolved.
func (s *service) SuggestSlots(ctx context.Context, req SuggestRequest) ([]Slot, []string, error) {
	suggester, skipped, err := s.suggesterFor(ctx, req.OrganizerID, req.ParticipantIDs, req.DurationMinutes)
	if err != nil {
		return nil, nil, err
	}
	n, days := req.NumSuggestions, req.DaysToSearch
	if n == 0 {
		n = DefaultNumSuggestions
	}
	if days == 0 {
		days = DefaultDaysToSearch
	}
	slots, err := suggester.SuggestSlots(ctx, req.PreferredDate, n, days)
	if err != nil {
		return nil, nil, err
	}
	return slots, skipped, nil
}

// FindNextAvailableSlot also returns the participant ids that could not be resolved.
func (s *service) FindNextAvailableSlot(ctx context.Context, req NextSlotRequest) (*Slot, []string, error) {
	suggester, skipped, err := s.suggesterFor(ctx, req.OrganizerID, req.ParticipantIDs, req.DurationMinutes)
	if err != nil {
		return nil, nil, err
	}
	slot, err := suggester.FindNextAvailableSlot(ctx, req.After, req.MaxDays)
	if err != nil {
		return nil, nil, err
	}
	return slot, skipped, nil
}

// suggesterFor builds a suggester over the organizer and the resolvable
// participants, in the organizer's zone.
func (s *service) suggesterFor(ctx context.Context, organizerID string, participantIDs []string, durationMinutes int) (*SlotSuggester, []string, error) {
	organizer, err := s.resolveOrganizer(ctx, organizerID)
	if err != nil {
		return nil, nil, err
	}

	people := []Person{organizer}
	seen := map[string]bool{organizer.ID: true}
	skipped := []string{}

	for _, id := range participantIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		p, err := s.source.ResolvePerson(ctx, id)
		if err != nil {
			if errors.Is(err, ErrPersonNotFound) {
				skipped = append(skipped, id)
				continue
			}
			return nil, nil, unavailable("resolve participant", err)
		}
		people = append(people, p)
	}

	loc := s.checker.opts.locationOf(organizer)
	return NewSlotSuggester(s.checker, people, durationMinutes, loc), skipped, nil
}

func (s *service) resolveOrganizer(ctx context.Context, id string) (Person, error) {
	p, err := s.source.ResolvePerson(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPersonNotFound) {
			return Person{}, ErrOrganizerNotFound
		}
		return Person{}, unavailable("resolve organizer", err)
	}
	return p, nil
}
