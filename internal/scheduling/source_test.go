package scheduling

import (
	"context"
	"time"
)

// memSource is an in-memory DataSource. It returns everything it holds for a
// person so the engine's own filtering is exercised.
type memSource struct {
	people   map[string]Person
	meetings map[string][]MeetingRef
	blocked  map[string][]BlockedRef
	windows  map[string][]AvailabilityWindow

	err          error
	meetingCalls int
}

func newMemSource(people ...Person) *memSource {
	s := &memSource{
		people:   map[string]Person{},
		meetings: map[string][]MeetingRef{},
		blocked:  map[string][]BlockedRef{},
		windows:  map[string][]AvailabilityWindow{},
	}
	for _, p := range people {
		s.people[p.ID] = p
	}
	return s
}

func (s *memSource) FindMeetingsForPerson(_ context.Context, personID string, _ Window, _ string) ([]MeetingRef, error) {
	s.meetingCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.meetings[personID], nil
}

func (s *memSource) FindBlockedTimesForPerson(_ context.Context, personID string, _ Window) ([]BlockedRef, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.blocked[personID], nil
}

func (s *memSource) FindLiveAvailability(_ context.Context, personID string, _ int, _ time.Time) ([]AvailabilityWindow, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.windows[personID], nil
}

func (s *memSource) ResolvePerson(_ context.Context, personID string) (Person, error) {
	if s.err != nil {
		return Person{}, s.err
	}
	p, ok := s.people[personID]
	if !ok {
		return Person{}, ErrPersonNotFound
	}
	return p, nil
}

// June 2024: the 3rd is a Monday, the 8th and 9th are the weekend.
func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.June, day, hour, minute, 0, 0, time.UTC)
}

func testOptions() Options {
	return Options{
		DefaultLocation: time.UTC,
		Now:             func() time.Time { return at(1, 12, 0) },
	}
}

// blockWeekdays blocks [from, to) on every weekday between the given June days.
func (s *memSource) blockWeekdays(personID string, firstDay, lastDay int, from, to TimeOfDay) {
	for d := firstDay; d <= lastDay; d++ {
		day := at(d, 0, 0)
		if isWeekend(day) {
			continue
		}
		s.blocked[personID] = append(s.blocked[personID], BlockedRef{
			ID:     "blk-" + day.Format("20060102"),
			Start:  from.On(day),
			End:    to.On(day),
			Reason: "busy",
		})
	}
}
