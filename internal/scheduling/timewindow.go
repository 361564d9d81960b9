package scheduling

import (
	"fmt"
	"time"
)

// SlotGranularity is the step between candidate slot starts.
const SlotGranularity = 30 * time.Minute

// lastMinute closes the open end of a partial day in a multi-day window.
const lastMinute = TimeOfDay(23*time.Hour + 59*time.Minute)

// Window is a half-open interval of absolute instants.
type Window struct {
	Start time.Time
	End   time.Time
}

// Validate returns ErrInvalidWindow unless both bounds are set and End is after Start.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() || !w.End.After(w.Start) {
		return ErrInvalidWindow
	}
	return nil
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Windows that only touch at a boundary do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// TimeOfDay is an offset from local midnight.
type TimeOfDay time.Duration

// Clock builds a TimeOfDay from hours and minutes.
func Clock(hour, minute int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Clock(t.Hour(), t.Minute()) + TimeOfDay(time.Duration(t.Second())*time.Second), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// On returns the instant at this time of day on the civil date of date, in date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	d := time.Duration(t)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	ns := int(d % time.Second)
	y, mo, day := date.Date()
	return time.Date(y, mo, day, h, m, s, ns, date.Location())
}

// ToLocal splits an instant into its civil date (midnight in loc) and time of day.
func ToLocal(instant time.Time, loc *time.Location) (time.Time, TimeOfDay) {
	local := instant.In(loc)
	y, m, d := local.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, loc)
	tod := Clock(local.Hour(), local.Minute()) +
		TimeOfDay(time.Duration(local.Second())*time.Second+time.Duration(local.Nanosecond()))
	return date, tod
}

// DayOfWeek numbers weekdays from Monday=0 to Sunday=6.
func DayOfWeek(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

func isWeekend(date time.Time) bool {
	return DayOfWeek(date) >= 5
}

func addDays(date time.Time, n int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, date.Location())
}

// civilDay orders dates by calendar day regardless of location.
func civilDay(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// BusinessHours bounds the slots the suggester will consider and serves as
// the availability fallback for weekdays without declared windows.
type BusinessHours struct {
	Start TimeOfDay
	End   TimeOfDay
}

// DefaultBusinessHours is 08:00-18:00 local.
var DefaultBusinessHours = BusinessHours{Start: Clock(8, 0), End: Clock(18, 0)}

func (b BusinessHours) Validate() error {
	if b.End <= b.Start {
		return fmt.Errorf("business hours %s-%s: %w", b.Start, b.End, ErrInvalidWindow)
	}
	return nil
}

func (b BusinessHours) contains(from, to TimeOfDay) bool {
	return from >= b.Start && to <= b.End
}
