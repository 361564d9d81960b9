package scheduling

import (
	"context"
	"fmt"
	"time"
)

// Options carries the settings shared by every engine component.
type Options struct {
	// BusinessHours defaults to DefaultBusinessHours when zero.
	BusinessHours BusinessHours
	// DefaultLocation applies to people without a zone. Defaults to UTC.
	DefaultLocation *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.BusinessHours == (BusinessHours{}) {
		o.BusinessHours = DefaultBusinessHours
	}
	if o.DefaultLocation == nil {
		o.DefaultLocation = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) locationOf(p Person) *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return o.DefaultLocation
}

// Evaluator decides whether a window falls inside a person's declared availability.
type Evaluator struct {
	source DataSource
	opts   Options
}

func NewEvaluator(source DataSource, opts Options) *Evaluator {
	return &Evaluator{source: source, opts: opts.withDefaults()}
}

// IsWithinAvailability tests the window day by day in the person's zone.
// Each local day must be contained in one of that weekday's live windows,
// or in business hours when the weekday has none.
func (e *Evaluator) IsWithinAvailability(ctx context.Context, person Person, start, end time.Time) (bool, error) {
	if err := (Window{Start: start, End: end}).Validate(); err != nil {
		return false, err
	}

	loc := e.opts.locationOf(person)
	startDate, startTOD := ToLocal(start, loc)
	endDate, endTOD := ToLocal(end, loc)
	today, _ := ToLocal(e.opts.Now(), loc)

	if startDate.Equal(endDate) {
		return e.dayFits(ctx, person, startDate, startTOD, endTOD, today)
	}

	for day := startDate; !day.After(endDate); day = addDays(day, 1) {
		from, to := TimeOfDay(0), lastMinute
		if day.Equal(startDate) {
			from = startTOD
		}
		if day.Equal(endDate) {
			to = endTOD
		}
		ok, err := e.dayFits(ctx, person, day, from, to, today)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (e *Evaluator) dayFits(ctx context.Context, person Person, day time.Time, from, to TimeOfDay, today time.Time) (bool, error) {
	weekday := DayOfWeek(day)
	windows, err := e.source.FindLiveAvailability(ctx, person.ID, weekday, today)
	if err != nil {
		return false, unavailable("find availability", err)
	}

	live := 0
	fits := false
	for _, w := range windows {
		if w.DayOfWeek != weekday || !w.LiveOn(today) {
			continue
		}
		// Windows never cross midnight.
		if w.End <= w.Start {
			return false, fmt.Errorf("availability window %s (%s-%s): %w", w.ID, w.Start, w.End, ErrInvalidWindow)
		}
		live++
		if w.contains(from, to) {
			fits = true
		}
	}

	if live == 0 {
		return e.opts.BusinessHours.contains(from, to), nil
	}
	return fits, nil
}
