package meeting

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
)

const icalProductID = "-//meeting-scheduler//EN"

// WriteICS encodes m as a single-event iCalendar document.
func WriteICS(w io.Writer, m *Meeting, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icalProductID)
	cal.Children = append(cal.Children, toEvent(m, now))

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode meeting to iCal failed: %w", err)
	}
	return nil
}

func toEvent(m *Meeting, now time.Time) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, m.ID)
	ve.Props.SetText(ical.PropSummary, m.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, m.StartTime.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, m.EndTime.UTC())
	ve.Props.SetText(ical.PropLocation, m.LocationDisplay())

	if m.Description != "" {
		ve.Props.SetText(ical.PropDescription, m.Description)
	}
	if m.VirtualLink != "" {
		ve.Props.SetText(ical.PropURL, m.VirtualLink)
	}
	if m.Status == StatusCancelled {
		ve.Props.SetText(ical.PropStatus, "CANCELLED")
	} else {
		ve.Props.SetText(ical.PropStatus, "CONFIRMED")
	}

	if m.OrganizerEmail != "" {
		p := ical.NewProp(ical.PropOrganizer)
		p.SetText("mailto:" + m.OrganizerEmail)
		if m.OrganizerName != "" {
			p.Params.Set(ical.ParamCommonName, m.OrganizerName)
		}
		ve.Props.Add(p)
	}
	for _, part := range m.Participants {
		if part.Email == "" {
			continue
		}
		p := ical.NewProp(ical.PropAttendee)
		p.SetText("mailto:" + part.Email)
		if part.Name != "" {
			p.Params.Set(ical.ParamCommonName, part.Name)
		}
		p.Params.Set(ical.ParamParticipationStatus, partStat(part.ResponseStatus))
		ve.Props.Add(p)
	}
	return ve
}

func partStat(r ResponseStatus) string {
	switch r {
	case ResponseAccepted:
		return "ACCEPTED"
	case ResponseDeclined:
		return "DECLINED"
	case ResponseTentative:
		return "TENTATIVE"
	default:
		return "NEEDS-ACTION"
	}
}
