package scheduling

import (
	"context"
	"sort"
	"time"
)

// ConflictReport describes one person's calendar against a candidate window.
// HasConflicts covers meetings and blocked times only; availability is reported apart.
type ConflictReport struct {
	PersonID                string
	ConflictingMeetings     []MeetingRef
	ConflictingBlockedTimes []BlockedRef
	WithinAvailability      bool
	HasConflicts            bool
}

// Free reports whether the person can take the window: no conflicts and within availability.
func (r *ConflictReport) Free() bool {
	return !r.HasConflicts && r.WithinAvailability
}

// Checker builds per-person conflict reports from the data source.
type Checker struct {
	source    DataSource
	evaluator *Evaluator
	opts      Options
}

// NewChecker creates a checker; zero fields of opts take their defaults.
func NewChecker(source DataSource, opts Options) *Checker {
	opts = opts.withDefaults()
	return &Checker{
		source:    source,
		evaluator: NewEvaluator(source, opts),
		opts:      opts,
	}
}

// GetAllConflicts collects the meetings and blocked times overlapping [start, end)
// for person, skipping excludeMeetingID, and evaluates availability.
func (c *Checker) GetAllConflicts(ctx context.Context, person Person, start, end time.Time, excludeMeetingID string) (*ConflictReport, error) {
	within := Window{Start: start, End: end}
	if err := within.Validate(); err != nil {
		return nil, err
	}

	meetings, err := c.source.FindMeetingsForPerson(ctx, person.ID, within, excludeMeetingID)
	if err != nil {
		return nil, unavailable("find meetings", err)
	}
	blocked, err := c.source.FindBlockedTimesForPerson(ctx, person.ID, within)
	if err != nil {
		return nil, unavailable("find blocked times", err)
	}

	report := &ConflictReport{
		PersonID:                person.ID,
		ConflictingMeetings:     []MeetingRef{},
		ConflictingBlockedTimes: []BlockedRef{},
	}

	for _, m := range meetings {
		if excludeMeetingID != "" && m.ID == excludeMeetingID {
			continue
		}
		if m.occupies() && Overlaps(m.Start, m.End, start, end) {
			report.ConflictingMeetings = append(report.ConflictingMeetings, m)
		}
	}
	for _, b := range blocked {
		if Overlaps(b.Start, b.End, start, end) {
			report.ConflictingBlockedTimes = append(report.ConflictingBlockedTimes, b)
		}
	}

	sort.SliceStable(report.ConflictingMeetings, func(i, j int) bool {
		return report.ConflictingMeetings[i].Start.Before(report.ConflictingMeetings[j].Start)
	})
	sort.SliceStable(report.ConflictingBlockedTimes, func(i, j int) bool {
		return report.ConflictingBlockedTimes[i].Start.Before(report.ConflictingBlockedTimes[j].Start)
	})

	report.HasConflicts = len(report.ConflictingMeetings) > 0 || len(report.ConflictingBlockedTimes) > 0

	report.WithinAvailability, err = c.evaluator.IsWithinAvailability(ctx, person, start, end)
	if err != nil {
		return nil, err
	}

	return report, nil
}
