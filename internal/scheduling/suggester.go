package scheduling

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultDurationMinutes = 30
	DefaultDaysToSearch    = 7
	DefaultMaxDays         = 14
)

// Slot is a candidate meeting time every person in the set can take.
type Slot struct {
	Start           time.Time
	End             time.Time
	DurationMinutes int
	Date            string // YYYY-MM-DD in the suggester's zone
	TimeDisplay     string // HH:MM-HH:MM in the suggester's zone
	AllAvailable    bool
}

// SlotSuggester scans weekday business hours in SlotGranularity steps for
// windows where every person is free and within availability.
type SlotSuggester struct {
	checker          *Checker
	people           []Person
	duration         time.Duration
	loc              *time.Location
	hours            BusinessHours
	excludeMeetingID string
}

// NewSlotSuggester uses DefaultDurationMinutes when durationMinutes is zero
// and the checker's default zone when loc is nil. A negative duration makes
// every search fail with ErrInvalidWindow.
func NewSlotSuggester(checker *Checker, people []Person, durationMinutes int, loc *time.Location) *SlotSuggester {
	if durationMinutes == 0 {
		durationMinutes = DefaultDurationMinutes
	}
	if loc == nil {
		loc = checker.opts.DefaultLocation
	}
	return &SlotSuggester{
		checker:  checker,
		people:   people,
		duration: time.Duration(durationMinutes) * time.Minute,
		loc:      loc,
		hours:    checker.opts.BusinessHours,
	}
}

// ExcludingMeeting makes every check ignore the given meeting, so a meeting
// being rescheduled does not block its own alternatives.
func (s *SlotSuggester) ExcludingMeeting(id string) *SlotSuggester {
	s.excludeMeetingID = id
	return s
}

// SuggestSlots returns up to n qualifying slots in chronological order,
// scanning preferredDate through preferredDate+daysToSearch and skipping weekends.
func (s *SlotSuggester) SuggestSlots(ctx context.Context, preferredDate time.Time, n, daysToSearch int) ([]Slot, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	if daysToSearch < 0 {
		return nil, fmt.Errorf("days to search %d: %w", daysToSearch, ErrInvalidWindow)
	}
	slots := []Slot{}
	if n <= 0 {
		return slots, nil
	}

	y, m, d := preferredDate.Date()
	first := time.Date(y, m, d, 0, 0, 0, 0, s.loc)

	for i := 0; i <= daysToSearch; i++ {
		day := addDays(first, i)
		if isWeekend(day) {
			continue
		}
		for t := s.hours.Start; t+TimeOfDay(s.duration) <= s.hours.End; t += TimeOfDay(SlotGranularity) {
			start := t.On(day)
			end := start.Add(s.duration)
			free, err := s.everyoneFree(ctx, start, end)
			if err != nil {
				return nil, err
			}
			if !free {
				continue
			}
			slots = append(slots, s.slot(start, end))
			if len(slots) == n {
				return slots, nil
			}
		}
	}
	return slots, nil
}

// FindNextAvailableSlot returns the first qualifying slot starting on a
// SlotGranularity boundary at or after after, or nil when none starts
// before after plus maxDays. Zero maxDays means DefaultMaxDays.
func (s *SlotSuggester) FindNextAvailableSlot(ctx context.Context, after time.Time, maxDays int) (*Slot, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	switch {
	case maxDays < 0:
		return nil, fmt.Errorf("max days %d: %w", maxDays, ErrInvalidWindow)
	case maxDays == 0:
		maxDays = DefaultMaxDays
	}
	deadline := after.Add(time.Duration(maxDays) * 24 * time.Hour)

	candidate := s.snap(s.ceil(after))
	for candidate.Before(deadline) {
		end := candidate.Add(s.duration)
		free, err := s.everyoneFree(ctx, candidate, end)
		if err != nil {
			return nil, err
		}
		if free {
			slot := s.slot(candidate, end)
			return &slot, nil
		}
		candidate = s.snap(candidate.Add(SlotGranularity))
	}
	return nil, nil
}

func (s *SlotSuggester) validate() error {
	if s.duration <= 0 {
		return fmt.Errorf("duration %s: %w", s.duration, ErrInvalidWindow)
	}
	return nil
}

// ceil rounds up to the next local SlotGranularity boundary.
func (s *SlotSuggester) ceil(t time.Time) time.Time {
	day, tod := ToLocal(t, s.loc)
	step := TimeOfDay(SlotGranularity)
	rounded := (tod + step - 1) / step * step
	if rounded >= TimeOfDay(24*time.Hour) {
		return addDays(day, 1)
	}
	return rounded.On(day)
}

// snap moves t into business hours on a weekday.
func (s *SlotSuggester) snap(t time.Time) time.Time {
	day, tod := ToLocal(t, s.loc)
	switch {
	case tod < s.hours.Start:
		t = s.hours.Start.On(day)
	case tod >= s.hours.End:
		day = addDays(day, 1)
		t = s.hours.Start.On(day)
	}
	if isWeekend(day) {
		day = addDays(day, 7-DayOfWeek(day))
		t = s.hours.Start.On(day)
	}
	return t
}

func (s *SlotSuggester) everyoneFree(ctx context.Context, start, end time.Time) (bool, error) {
	for _, p := range s.people {
		report, err := s.checker.GetAllConflicts(ctx, p, start, end, s.excludeMeetingID)
		if err != nil {
			return false, err
		}
		if !report.Free() {
			return false, nil
		}
	}
	return true, nil
}

func (s *SlotSuggester) slot(start, end time.Time) Slot {
	ls, le := start.In(s.loc), end.In(s.loc)
	return Slot{
		Start:           start,
		End:             end,
		DurationMinutes: int(s.duration / time.Minute),
		Date:            ls.Format("2006-01-02"),
		TimeDisplay:     ls.Format("15:04") + "-" + le.Format("15:04"),
		AllAvailable:    true,
	}
}
