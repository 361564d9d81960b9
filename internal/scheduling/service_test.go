package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_UnknownOrganizer(t *testing.T) {
	svc := NewService(newMemSource(), testOptions())
	ctx := context.Background()

	_, err := svc.CheckConflicts(ctx, "nobody", Candidate{Start: at(3, 9, 0)})
	assert.ErrorIs(t, err, ErrOrganizerNotFound)

	_, _, err = svc.SuggestSlots(ctx, SuggestRequest{OrganizerID: "nobody", PreferredDate: at(3, 0, 0), NumSuggestions: 1})
	assert.ErrorIs(t, err, ErrOrganizerNotFound)

	_, _, err = svc.FindNextAvailableSlot(ctx, NextSlotRequest{OrganizerID: "nobody", After: at(3, 9, 0)})
	assert.ErrorIs(t, err, ErrOrganizerNotFound)

	_, err = svc.PersonConflicts(ctx, "nobody", at(3, 9, 0), at(3, 10, 0), "")
	assert.ErrorIs(t, err, ErrPersonNotFound)
}

func TestService_SuggestSlotsInOrganizerZone(t *testing.T) {
	eat := time.FixedZone("EAT", 3*60*60)
	org := Person{ID: "org", Location: eat}
	part := Person{ID: "part"}
	src := newMemSource(org, part)
	svc := NewService(src, testOptions())

	slots, skipped, err := svc.SuggestSlots(context.Background(), SuggestRequest{
		OrganizerID:     "org",
		ParticipantIDs:  []string{"part", "ghost"},
		DurationMinutes: 30,
		PreferredDate:   at(3, 0, 0),
		NumSuggestions:  2,
		DaysToSearch:    7,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost"}, skipped)
	require.Len(t, slots, 2)

	// The UTC participant only opens at 08:00Z, which is 11:00 in EAT.
	assert.Equal(t, "11:00-11:30", slots[0].TimeDisplay)
	assert.True(t, slots[0].Start.Equal(at(3, 8, 0)))
}

func TestService_FindNextAvailableSlot(t *testing.T) {
	org := Person{ID: "org"}
	src := newMemSource(org)
	src.blocked["org"] = []BlockedRef{{ID: "b", Start: at(3, 8, 0), End: at(3, 18, 0)}}
	svc := NewService(src, testOptions())

	slot, skipped, err := svc.FindNextAvailableSlot(context.Background(), NextSlotRequest{
		OrganizerID:     "org",
		DurationMinutes: 45,
		After:           at(3, 9, 10),
	})
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.NotNil(t, slot)
	assert.Equal(t, at(4, 8, 0), slot.Start)
	assert.Equal(t, at(4, 8, 45), slot.End)
}

func TestService_PersonConflicts(t *testing.T) {
	a := Person{ID: "a"}
	src := newMemSource(a)
	src.meetings["a"] = []MeetingRef{{ID: "m1", Start: at(3, 10, 0), End: at(3, 10, 30), Status: StatusScheduled}}
	svc := NewService(src, testOptions())

	report, err := svc.PersonConflicts(context.Background(), "a", at(3, 10, 15), at(3, 10, 45), "")
	require.NoError(t, err)
	assert.True(t, report.HasConflicts)

	report, err = svc.PersonConflicts(context.Background(), "a", at(3, 10, 15), at(3, 10, 45), "m1")
	require.NoError(t, err)
	assert.False(t, report.HasConflicts)
}

func TestService_CustomBusinessHours(t *testing.T) {
	org := Person{ID: "org"}
	opts := testOptions()
	opts.BusinessHours = BusinessHours{Start: Clock(10, 0), End: Clock(12, 0)}
	svc := NewService(newMemSource(org), opts)

	slots, _, err := svc.SuggestSlots(context.Background(), SuggestRequest{
		OrganizerID:     "org",
		DurationMinutes: 60,
		PreferredDate:   at(3, 0, 0),
	})
	require.NoError(t, err)
	require.Len(t, slots, DefaultNumSuggestions)
	assert.Equal(t, "10:00-11:00", slots[0].TimeDisplay)
	assert.Equal(t, "11:00-12:00", slots[2].TimeDisplay)
	assert.Equal(t, "2024-06-04", slots[3].Date, "three one-hour slots fit a day")
}

func TestService_RejectsNegativeSearchBounds(t *testing.T) {
	svc := NewService(newMemSource(Person{ID: "org"}), testOptions())
	ctx := context.Background()

	_, _, err := svc.SuggestSlots(ctx, SuggestRequest{OrganizerID: "org", DurationMinutes: -45, PreferredDate: at(3, 0, 0)})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, _, err = svc.SuggestSlots(ctx, SuggestRequest{OrganizerID: "org", PreferredDate: at(3, 0, 0), DaysToSearch: -4})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, _, err = svc.FindNextAvailableSlot(ctx, NextSlotRequest{OrganizerID: "org", After: at(3, 9, 0), MaxDays: -1})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
