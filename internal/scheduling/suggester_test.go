package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertSound re-checks every slot for every person.
func assertSound(t *testing.T, c *Checker, people []Person, slots ...Slot) {
	t.Helper()
	for _, s := range slots {
		for _, p := range people {
			r, err := c.GetAllConflicts(context.Background(), p, s.Start, s.End, "")
			require.NoError(t, err)
			assert.False(t, r.HasConflicts, "slot %s %s conflicts for %s", s.Date, s.TimeDisplay, p.ID)
			assert.True(t, r.WithinAvailability, "slot %s %s outside availability for %s", s.Date, s.TimeDisplay, p.ID)
		}
	}
}

func TestSuggestSlots_BusyMostOfTheDay(t *testing.T) {
	org := Person{ID: "org", Name: "Organizer"}
	part := Person{ID: "part", Name: "Participant"}
	src := newMemSource(org, part)
	src.blockWeekdays("org", 3, 14, Clock(9, 0), Clock(17, 0))
	src.blockWeekdays("part", 3, 14, Clock(9, 0), Clock(17, 0))
	c := NewChecker(src, testOptions())
	people := []Person{org, part}

	slots, err := NewSlotSuggester(c, people, 30, time.UTC).SuggestSlots(context.Background(), at(3, 0, 0), 3, 7)
	require.NoError(t, err)
	require.Len(t, slots, 3)

	assert.Equal(t, "08:00-08:30", slots[0].TimeDisplay)
	assert.Equal(t, "08:30-09:00", slots[1].TimeDisplay)
	assert.Equal(t, "17:00-17:30", slots[2].TimeDisplay)
	for _, s := range slots {
		assert.Equal(t, "2024-06-03", s.Date)
		assert.Equal(t, 30, s.DurationMinutes)
		assert.True(t, s.AllAvailable)
	}
	assertSound(t, c, people, slots...)
}

func TestSuggestSlots_SkipsWeekends(t *testing.T) {
	// Friday the 7th is fully booked, the weekend is free but must be skipped.
	p := Person{ID: "p"}
	src := newMemSource(p)
	src.blocked["p"] = []BlockedRef{{ID: "fri", Start: at(7, 0, 0), End: at(8, 0, 0)}}
	c := NewChecker(src, testOptions())

	slots, err := NewSlotSuggester(c, []Person{p}, 60, time.UTC).SuggestSlots(context.Background(), at(7, 0, 0), 2, 7)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	for _, s := range slots {
		assert.Equal(t, "2024-06-10", s.Date)
		assert.Less(t, DayOfWeek(s.Start), 5)
	}
	assert.Equal(t, "08:00-09:00", slots[0].TimeDisplay)
	assert.Equal(t, "08:30-09:30", slots[1].TimeDisplay)
}

func TestSuggestSlots_EmptyPeopleSetTakesEverySlot(t *testing.T) {
	c := NewChecker(newMemSource(), testOptions())
	ctx := context.Background()

	slots, err := NewSlotSuggester(c, nil, 30, time.UTC).SuggestSlots(ctx, at(3, 0, 0), 100, 0)
	require.NoError(t, err)
	assert.Len(t, slots, 20, "08:00 to 17:30 in half-hour steps")
	assert.Equal(t, "17:30-18:00", slots[len(slots)-1].TimeDisplay)

	slots, err = NewSlotSuggester(c, nil, 60, time.UTC).SuggestSlots(ctx, at(3, 0, 0), 100, 0)
	require.NoError(t, err)
	assert.Len(t, slots, 19, "an hour-long slot cannot start after 17:00")
	assert.Equal(t, "17:00-18:00", slots[len(slots)-1].TimeDisplay)

	slots, err = NewSlotSuggester(c, nil, 30, time.UTC).SuggestSlots(ctx, at(8, 0, 0), 100, 1)
	require.NoError(t, err)
	assert.Empty(t, slots, "a weekend-only horizon has nothing to offer")
}

func TestSuggestSlots_Limits(t *testing.T) {
	p := Person{ID: "p"}
	src := newMemSource(p)
	src.blocked["p"] = []BlockedRef{{ID: "away", Start: at(1, 0, 0), End: at(30, 0, 0), Reason: "vacation"}}
	c := NewChecker(src, testOptions())
	ctx := context.Background()

	slots, err := NewSlotSuggester(c, []Person{p}, 30, time.UTC).SuggestSlots(ctx, at(3, 0, 0), 0, 7)
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)

	slots, err = NewSlotSuggester(c, []Person{p}, 30, time.UTC).SuggestSlots(ctx, at(3, 0, 0), 5, 7)
	require.NoError(t, err)
	assert.Empty(t, slots, "horizon exhausted")

	free := NewChecker(newMemSource(), testOptions())
	slots, err = NewSlotSuggester(free, nil, 30, time.UTC).SuggestSlots(ctx, at(3, 0, 0), 4, 7)
	require.NoError(t, err)
	assert.Len(t, slots, 4)
}

func TestSuggestSlots_OutsideAvailabilityDisqualifies(t *testing.T) {
	p := Person{ID: "p"}
	src := newMemSource(p)
	src.windows["p"] = []AvailabilityWindow{
		{ID: "mon-pm", DayOfWeek: 0, Start: Clock(15, 0), End: Clock(16, 0), Active: true},
	}
	c := NewChecker(src, testOptions())

	slots, err := NewSlotSuggester(c, []Person{p}, 30, time.UTC).SuggestSlots(context.Background(), at(3, 0, 0), 5, 0)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "15:00-15:30", slots[0].TimeDisplay)
	assert.Equal(t, "15:30-16:00", slots[1].TimeDisplay)
}

func TestSuggestSlots_UsesSuggesterZone(t *testing.T) {
	eat := time.FixedZone("EAT", 3*60*60)
	p := Person{ID: "p", Location: eat}
	c := NewChecker(newMemSource(p), testOptions())

	slots, err := NewSlotSuggester(c, []Person{p}, 30, eat).SuggestSlots(context.Background(), at(3, 0, 0), 1, 0)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "08:00-08:30", slots[0].TimeDisplay)
	assert.True(t, slots[0].Start.Equal(at(3, 5, 0)))
}

func TestFindNextAvailableSlot_Snapping(t *testing.T) {
	c := NewChecker(newMemSource(), testOptions())
	s := NewSlotSuggester(c, nil, 30, time.UTC)

	tests := []struct {
		name  string
		after time.Time
		want  time.Time
	}{
		{"rounds up to half hour", at(3, 10, 7), at(3, 10, 30)},
		{"boundary is kept", at(3, 10, 0), at(3, 10, 0)},
		{"before opening", at(3, 6, 0), at(3, 8, 0)},
		{"after closing", at(3, 18, 5), at(4, 8, 0)},
		{"exactly closing", at(3, 18, 0), at(4, 8, 0)},
		{"friday evening", at(7, 19, 0), at(10, 8, 0)},
		{"saturday morning", at(8, 7, 0), at(10, 8, 0)},
		{"late sunday", at(9, 23, 45), at(10, 8, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := s.FindNextAvailableSlot(context.Background(), tt.after, 0)
			require.NoError(t, err)
			require.NotNil(t, slot)
			assert.True(t, tt.want.Equal(slot.Start), "got %s", slot.Start)
			assert.Equal(t, tt.want.Add(30*time.Minute), slot.End)
		})
	}
}

func TestFindNextAvailableSlot_SkipsBusyTime(t *testing.T) {
	p := Person{ID: "p"}
	src := newMemSource(p)
	src.blocked["p"] = []BlockedRef{{ID: "b", Start: at(3, 10, 30), End: at(3, 12, 0)}}
	src.meetings["p"] = []MeetingRef{{ID: "m", Start: at(3, 12, 0), End: at(3, 12, 30), Status: StatusScheduled}}
	c := NewChecker(src, testOptions())

	slot, err := NewSlotSuggester(c, []Person{p}, 30, time.UTC).FindNextAvailableSlot(context.Background(), at(3, 10, 7), 14)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, at(3, 12, 30), slot.Start)
	assertSound(t, c, []Person{p}, *slot)
}

func TestFindNextAvailableSlot_HorizonExhausted(t *testing.T) {
	p := Person{ID: "p"}
	src := newMemSource(p)
	src.blockWeekdays("p", 3, 30, Clock(0, 0), lastMinute)
	c := NewChecker(src, testOptions())
	s := NewSlotSuggester(c, []Person{p}, 30, time.UTC)

	slot, err := s.FindNextAvailableSlot(context.Background(), at(3, 9, 0), 3)
	require.NoError(t, err)
	assert.Nil(t, slot)
}

func TestFindNextAvailableSlot_DataFailure(t *testing.T) {
	p := Person{ID: "p"}
	src := newMemSource(p)
	src.err = assert.AnError
	c := NewChecker(src, testOptions())

	_, err := NewSlotSuggester(c, []Person{p}, 30, time.UTC).FindNextAvailableSlot(context.Background(), at(3, 9, 0), 1)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestSlotSuggester_RejectsNegativeInputs(t *testing.T) {
	c := NewChecker(newMemSource(), testOptions())
	ctx := context.Background()

	_, err := NewSlotSuggester(c, nil, -45, time.UTC).SuggestSlots(ctx, at(3, 0, 0), 1, 7)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = NewSlotSuggester(c, nil, -45, time.UTC).FindNextAvailableSlot(ctx, at(3, 9, 0), 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = NewSlotSuggester(c, nil, 30, time.UTC).SuggestSlots(ctx, at(3, 0, 0), 1, -4)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = NewSlotSuggester(c, nil, 30, time.UTC).FindNextAvailableSlot(ctx, at(3, 9, 0), -1)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestSlotSuggester_ZeroDurationUsesDefault(t *testing.T) {
	c := NewChecker(newMemSource(), testOptions())

	slots, err := NewSlotSuggester(c, nil, 0, time.UTC).SuggestSlots(context.Background(), at(3, 0, 0), 1, 0)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, DefaultDurationMinutes, slots[0].DurationMinutes)
}
