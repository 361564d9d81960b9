package scheduling

import (
	"context"
	"errors"
	"time"
)

// MaxSuggestedAlternatives bounds the alternatives attached to a conflicting candidate.
const MaxSuggestedAlternatives = 3

// Candidate is a proposed meeting. A zero End means Start plus DurationMinutes.
type Candidate struct {
	Start            time.Time
	End              time.Time
	DurationMinutes  int
	ParticipantIDs   []string
	ExcludeMeetingID string
}

// Window resolves the candidate's end. A zero duration means
// DefaultDurationMinutes; a negative one yields a window Validate rejects.
func (c Candidate) Window() Window {
	end := c.End
	if end.IsZero() {
		d := c.DurationMinutes
		if d == 0 {
			d = DefaultDurationMinutes
		}
		end = c.Start.Add(time.Duration(d) * time.Minute)
	}
	return Window{Start: c.Start, End: end}
}

// ParticipantConflict is one conflicting participant's report with their display name.
type ParticipantConflict struct {
	PersonID string
	Name     string
	Report   *ConflictReport
}

// AggregateReport combines the organizer's report with every conflicting
// participant's and, when anyone conflicts, alternative slots.
type AggregateReport struct {
	OrganizerReport       *ConflictReport
	ParticipantConflicts  map[string]ParticipantConflict
	HasAnyConflicts       bool
	SuggestedAlternatives []Slot
	// SkippedParticipantIDs lists ids that did not resolve to a person.
	SkippedParticipantIDs []string
	// DuplicateParticipantIDs lists ids dropped because they repeat an earlier
	// participant or the organizer. The organizer is covered by OrganizerReport.
	DuplicateParticipantIDs []string
}

// Aggregator runs the conflict check across the organizer and participants.
type Aggregator struct {
	source  DataSource
	checker *Checker
}

// NewAggregator creates an aggregator resolving participants through source.
func NewAggregator(source DataSource, checker *Checker) *Aggregator {
	return &Aggregator{source: source, checker: checker}
}

// CheckMeetingConflicts checks the organizer and every resolvable participant.
// Only conflicting participants are reported. When anyone conflicts, up to
// MaxSuggestedAlternatives slots are suggested from the candidate's local date
// in the organizer's zone.
func (a *Aggregator) CheckMeetingConflicts(ctx context.Context, cand Candidate, organizer Person) (*AggregateReport, error) {
	w := cand.Window()
	if err := w.Validate(); err != nil {
		return nil, err
	}

	orgReport, err := a.checker.GetAllConflicts(ctx, organizer, w.Start, w.End, cand.ExcludeMeetingID)
	if err != nil {
		return nil, err
	}

	report := &AggregateReport{
		OrganizerReport:         orgReport,
		ParticipantConflicts:    map[string]ParticipantConflict{},
		SuggestedAlternatives:   []Slot{},
		SkippedParticipantIDs:   []string{},
		DuplicateParticipantIDs: []string{},
	}

	people := []Person{organizer}
	seen := map[string]bool{organizer.ID: true}

	for _, id := range cand.ParticipantIDs {
		if seen[id] {
			report.DuplicateParticipantIDs = append(report.DuplicateParticipantIDs, id)
			continue
		}
		seen[id] = true

		p, err := a.source.ResolvePerson(ctx, id)
		if err != nil {
			if errors.Is(err, ErrPersonNotFound) {
				report.SkippedParticipantIDs = append(report.SkippedParticipantIDs, id)
				continue
			}
			return nil, unavailable("resolve participant", err)
		}
		people = append(people, p)

		r, err := a.checker.GetAllConflicts(ctx, p, w.Start, w.End, cand.ExcludeMeetingID)
		if err != nil {
			return nil, err
		}
		if r.HasConflicts {
			report.ParticipantConflicts[p.ID] = ParticipantConflict{PersonID: p.ID, Name: p.Name, Report: r}
		}
	}

	report.HasAnyConflicts = orgReport.HasConflicts || len(report.ParticipantConflicts) > 0
	if !report.HasAnyConflicts {
		return report, nil
	}

	loc := a.checker.opts.locationOf(organizer)
	date, _ := ToLocal(w.Start, loc)
	minutes := int(w.End.Sub(w.Start) / time.Minute)

	slots, err := NewSlotSuggester(a.checker, people, minutes, loc).
		ExcludingMeeting(cand.ExcludeMeetingID).
		SuggestSlots(ctx, date, MaxSuggestedAlternatives, DefaultDaysToSearch)
	if err != nil {
		return nil, err
	}
	report.SuggestedAlternatives = slots

	return report, nil
}
