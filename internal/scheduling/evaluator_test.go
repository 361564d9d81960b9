package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluator_DefaultBusinessHoursFallback(t *testing.T) {
	p := Person{ID: "b", Name: "Person B"}
	e := NewEvaluator(newMemSource(p), testOptions())
	ctx := context.Background()

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"whole business day", at(3, 8, 0), at(3, 18, 0), true},
		{"morning", at(3, 9, 0), at(3, 9, 30), true},
		{"evening", at(3, 19, 0), at(3, 19, 30), false},
		{"starts before opening", at(3, 7, 59), at(3, 8, 30), false},
		{"ends after closing", at(3, 17, 45), at(3, 18, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.IsWithinAvailability(ctx, p, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluator_DeclaredWindowContainment(t *testing.T) {
	p := Person{ID: "a"}
	src := newMemSource(p)
	src.windows["a"] = []AvailabilityWindow{
		{ID: "w1", DayOfWeek: 0, Start: Clock(9, 0), End: Clock(12, 0), Active: true},
		{ID: "w2", DayOfWeek: 0, Start: Clock(14, 0), End: Clock(16, 0), Active: true},
	}
	e := NewEvaluator(src, testOptions())
	ctx := context.Background()

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"equal to first window", at(3, 9, 0), at(3, 12, 0), true},
		{"inside second window", at(3, 14, 30), at(3, 15, 0), true},
		{"one minute early", at(3, 8, 59), at(3, 12, 0), false},
		{"one minute late", at(3, 9, 0), at(3, 12, 1), false},
		{"spans the gap", at(3, 11, 30), at(3, 14, 30), false},
		{"in business hours but outside windows", at(3, 12, 30), at(3, 13, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.IsWithinAvailability(ctx, p, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluator_OnlyLiveWindowsForTheWeekdayCount(t *testing.T) {
	p := Person{ID: "a"}
	past := at(1, 0, 0).AddDate(0, 0, -10)
	future := at(1, 0, 0).AddDate(0, 0, 10)

	tests := []struct {
		name   string
		window AvailabilityWindow
	}{
		{"other weekday", AvailabilityWindow{ID: "tue", DayOfWeek: 1, Start: Clock(9, 0), End: Clock(10, 0), Active: true}},
		{"inactive", AvailabilityWindow{ID: "off", DayOfWeek: 0, Start: Clock(9, 0), End: Clock(10, 0)}},
		{"expired", AvailabilityWindow{ID: "old", DayOfWeek: 0, Start: Clock(9, 0), End: Clock(10, 0), Active: true, EffectiveUntil: &past}},
		{"not yet effective", AvailabilityWindow{ID: "new", DayOfWeek: 0, Start: Clock(9, 0), End: Clock(10, 0), Active: true, EffectiveFrom: &future}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newMemSource(p)
			src.windows["a"] = []AvailabilityWindow{tt.window}
			e := NewEvaluator(src, testOptions())

			// Ignored windows leave the business-hours fallback in place.
			got, err := e.IsWithinAvailability(context.Background(), p, at(3, 15, 0), at(3, 16, 0))
			require.NoError(t, err)
			assert.True(t, got)
		})
	}
}

func TestEvaluator_EffectiveRangeIncludesToday(t *testing.T) {
	p := Person{ID: "a"}
	today := at(1, 0, 0)
	src := newMemSource(p)
	src.windows["a"] = []AvailabilityWindow{
		{ID: "w", DayOfWeek: 0, Start: Clock(9, 0), End: Clock(10, 0), Active: true, EffectiveFrom: &today, EffectiveUntil: &today},
	}
	e := NewEvaluator(src, testOptions())

	got, err := e.IsWithinAvailability(context.Background(), p, at(3, 15, 0), at(3, 16, 0))
	require.NoError(t, err)
	assert.False(t, got, "a live window replaces the fallback")
}

func TestEvaluator_OvernightWindowIsRejected(t *testing.T) {
	p := Person{ID: "a"}
	src := newMemSource(p)
	src.windows["a"] = []AvailabilityWindow{
		{ID: "night", DayOfWeek: 0, Start: Clock(22, 0), End: Clock(2, 0), Active: true},
	}
	e := NewEvaluator(src, testOptions())

	_, err := e.IsWithinAvailability(context.Background(), p, at(3, 9, 0), at(3, 10, 0))
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestEvaluator_MultiDay(t *testing.T) {
	p := Person{ID: "a"}
	ctx := context.Background()

	t.Run("fallback rejects overnight span", func(t *testing.T) {
		e := NewEvaluator(newMemSource(p), testOptions())
		got, err := e.IsWithinAvailability(ctx, p, at(3, 17, 0), at(4, 9, 0))
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("full-day windows accept overnight span", func(t *testing.T) {
		src := newMemSource(p)
		src.windows["a"] = []AvailabilityWindow{
			{ID: "mon", DayOfWeek: 0, Start: Clock(0, 0), End: lastMinute, Active: true},
			{ID: "tue", DayOfWeek: 1, Start: Clock(0, 0), End: lastMinute, Active: true},
		}
		e := NewEvaluator(src, testOptions())
		got, err := e.IsWithinAvailability(ctx, p, at(3, 20, 0), at(4, 2, 0))
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("every day must pass", func(t *testing.T) {
		src := newMemSource(p)
		src.windows["a"] = []AvailabilityWindow{
			{ID: "mon", DayOfWeek: 0, Start: Clock(0, 0), End: lastMinute, Active: true},
			{ID: "tue", DayOfWeek: 1, Start: Clock(0, 0), End: lastMinute, Active: true},
		}
		e := NewEvaluator(src, testOptions())
		got, err := e.IsWithinAvailability(ctx, p, at(3, 20, 0), at(5, 2, 0))
		require.NoError(t, err)
		assert.False(t, got, "Wednesday falls back to business hours")
	})
}

func TestEvaluator_UsesPersonZone(t *testing.T) {
	eat := time.FixedZone("EAT", 3*60*60)
	local := Person{ID: "n", Location: eat}
	e := NewEvaluator(newMemSource(local), testOptions())
	ctx := context.Background()

	// 05:00Z is 08:00 in EAT.
	got, err := e.IsWithinAvailability(ctx, local, at(3, 5, 0), at(3, 6, 0))
	require.NoError(t, err)
	assert.True(t, got)

	got, err = e.IsWithinAvailability(ctx, Person{ID: "n"}, at(3, 5, 0), at(3, 6, 0))
	require.NoError(t, err)
	assert.False(t, got, "without a zone the default UTC applies")
}

func TestEvaluator_DataFailure(t *testing.T) {
	p := Person{ID: "a"}
	boom := errors.New("connection reset")
	src := newMemSource(p)
	src.err = boom
	e := NewEvaluator(src, testOptions())

	_, err := e.IsWithinAvailability(context.Background(), p, at(3, 9, 0), at(3, 10, 0))
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.ErrorIs(t, err, boom)
}

func TestEvaluator_InvalidWindow(t *testing.T) {
	p := Person{ID: "a"}
	e := NewEvaluator(newMemSource(p), testOptions())

	_, err := e.IsWithinAvailability(context.Background(), p, at(3, 10, 0), at(3, 9, 0))
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
