package notification

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/pkg/apperror"
)

var (
	ErrNotFound             = errors.New("notification preferences not found")
	ErrInvalidReminderLead  = apperror.New(http.StatusBadRequest, "reminder_time_minutes must be between 1 and 1440")
	ErrInvalidTimeOfDay     = apperror.New(http.StatusBadRequest, "quiet hours must be formatted as HH:MM")
	ErrQuietHoursIncomplete = apperror.New(http.StatusBadRequest, "quiet hours need both a start and an end")
)

const (
	DefaultReminderMinutes = 30
	MaxReminderMinutes     = 24 * 60
)

// Kind is the meeting lifecycle event a notification is about.
type Kind string

const (
	KindInvitation   Kind = "invitation"
	KindUpdate       Kind = "update"
	KindCancellation Kind = "cancellation"
	KindReminder     Kind = "reminder"
	KindResponse     Kind = "response"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

var Channels = []Channel{ChannelEmail, ChannelSMS}

// Preferences are a user's per-kind, per-channel switches.
type Preferences struct {
	UserID string

	EmailInvitations   bool
	EmailUpdates       bool
	EmailCancellations bool
	EmailReminders     bool

	SMSInvitations   bool
	SMSUpdates       bool
	SMSCancellations bool
	SMSReminders     bool

	ReminderMinutes int

	// Quiet hours are wall-clock times in the user's own zone. A window whose
	// start is after its end wraps past midnight.
	QuietHoursEnabled bool
	QuietHoursStart   *TimeOfDay
	QuietHoursEnd     *TimeOfDay

	UpdatedAt time.Time
}

// TimeOfDay is minutes since local midnight.
type TimeOfDay int

// ParseTimeOfDay accepts "HH:MM" on a 24 hour clock.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidTimeOfDay)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// ReminderLead is how long before a meeting this user is reminded.
func (p *Preferences) ReminderLead() time.Duration {
	if p.ReminderMinutes <= 0 {
		return DefaultReminderMinutes * time.Minute
	}
	return time.Duration(p.ReminderMinutes) * time.Minute
}

// InQuietHours reports whether t falls inside the quiet window, read in loc.
// Disabled, incomplete and empty windows never match.
func (p *Preferences) InQuietHours(t time.Time, loc *time.Location) bool {
	if !p.QuietHoursEnabled || p.QuietHoursStart == nil || p.QuietHoursEnd == nil {
		return false
	}
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	m := TimeOfDay(local.Hour()*60 + local.Minute())
	start, end := *p.QuietHoursStart, *p.QuietHoursEnd

	switch {
	case start == end:
		return false
	case start < end:
		return m >= start && m < end
	default:
		return m >= start || m < end
	}
}

// DefaultPreferences sends everything by email and only cancellations and reminders by SMS.
func DefaultPreferences(userID string) *Preferences {
	return &Preferences{
		UserID:             userID,
		EmailInvitations:   true,
		EmailUpdates:       true,
		EmailCancellations: true,
		EmailReminders:     true,
		SMSCancellations:   true,
		SMSReminders:       true,
		ReminderMinutes:    DefaultReminderMinutes,
	}
}

// ShouldSend reports whether kind may go out on channel. Kinds without a
// switch are allowed; unknown channels never are.
func (p *Preferences) ShouldSend(channel Channel, kind Kind) bool {
	switch channel {
	case ChannelEmail:
		switch kind {
		case KindInvitation:
			return p.EmailInvitations
		case KindUpdate:
			return p.EmailUpdates
		case KindCancellation:
			return p.EmailCancellations
		case KindReminder:
			return p.EmailReminders
		default:
			return true
		}
	case ChannelSMS:
		switch kind {
		case KindInvitation:
			return p.SMSInvitations
		case KindUpdate:
			return p.SMSUpdates
		case KindCancellation:
			return p.SMSCancellations
		case KindReminder:
			return p.SMSReminders
		default:
			return true
		}
	default:
		return false
	}
}

// AllowedChannels lists the channels kind may use, in Channels order.
func (p *Preferences) AllowedChannels(kind Kind) []Channel {
	out := []Channel{}
	for _, ch := range Channels {
		if p.ShouldSend(ch, kind) {
			out = append(out, ch)
		}
	}
	return out
}

// UpdatePreferencesRequest carries optional changes; nil fields are left
// untouched. An empty quiet hours bound clears it.
type UpdatePreferencesRequest struct {
	EmailInvitations   *bool
	EmailUpdates       *bool
	EmailCancellations *bool
	EmailReminders     *bool
	SMSInvitations     *bool
	SMSUpdates         *bool
	SMSCancellations   *bool
	SMSReminders       *bool

	ReminderMinutes   *int
	QuietHoursEnabled *bool
	QuietHoursStart   *string
	QuietHoursEnd     *string
}

// apply writes the changes into p and validates the result. p is left
// partially updated on error.
func (r UpdatePreferencesRequest) apply(p *Preferences) error {
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.EmailInvitations, r.EmailInvitations)
	set(&p.EmailUpdates, r.EmailUpdates)
	set(&p.EmailCancellations, r.EmailCancellations)
	set(&p.EmailReminders, r.EmailReminders)
	set(&p.SMSInvitations, r.SMSInvitations)
	set(&p.SMSUpdates, r.SMSUpdates)
	set(&p.SMSCancellations, r.SMSCancellations)
	set(&p.SMSReminders, r.SMSReminders)
	set(&p.QuietHoursEnabled, r.QuietHoursEnabled)

	if r.ReminderMinutes != nil {
		if *r.ReminderMinutes < 1 || *r.ReminderMinutes > MaxReminderMinutes {
			return ErrInvalidReminderLead
		}
		p.ReminderMinutes = *r.ReminderMinutes
	}

	clock := func(dst **TimeOfDay, v *string) error {
		if v == nil {
			return nil
		}
		if *v == "" {
			*dst = nil
			return nil
		}
		t, err := ParseTimeOfDay(*v)
		if err != nil {
			return err
		}
		*dst = &t
		return nil
	}
	if err := clock(&p.QuietHoursStart, r.QuietHoursStart); err != nil {
		return err
	}
	if err := clock(&p.QuietHoursEnd, r.QuietHoursEnd); err != nil {
		return err
	}

	if p.QuietHoursEnabled && (p.QuietHoursStart == nil || p.QuietHoursEnd == nil) {
		return ErrQuietHoursIncomplete
	}
	return nil
}
