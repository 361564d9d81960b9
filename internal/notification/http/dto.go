package http

import (
	"time"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/notification"
)

type PreferencesResponse struct {
	EmailInvitations    bool      `json:"email_invitations"`
	EmailUpdates        bool      `json:"email_updates"`
	EmailCancellations  bool      `json:"email_cancellations"`
	EmailReminders      bool      `json:"email_reminders"`
	SMSInvitations      bool      `json:"sms_invitations"`
	SMSUpdates          bool      `json:"sms_updates"`
	SMSCancellations    bool      `json:"sms_cancellations"`
	SMSReminders        bool      `json:"sms_reminders"`
	ReminderTimeMinutes int       `json:"reminder_time_minutes"`
	QuietHoursEnabled   bool      `json:"quiet_hours_enabled"`
	QuietHoursStart     *string   `json:"quiet_hours_start"`
	QuietHoursEnd       *string   `json:"quiet_hours_end"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func clock(t *notification.TimeOfDay) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}

func NewPreferencesResponse(p *notification.Preferences) PreferencesResponse {
	return PreferencesResponse{
		EmailInvitations:    p.EmailInvitations,
		EmailUpdates:        p.EmailUpdates,
		EmailCancellations:  p.EmailCancellations,
		EmailReminders:      p.EmailReminders,
		SMSInvitations:      p.SMSInvitations,
		SMSUpdates:          p.SMSUpdates,
		SMSCancellations:    p.SMSCancellations,
		SMSReminders:        p.SMSReminders,
		ReminderTimeMinutes: int(p.ReminderLead() / time.Minute),
		QuietHoursEnabled:   p.QuietHoursEnabled,
		QuietHoursStart:     clock(p.QuietHoursStart),
		QuietHoursEnd:       clock(p.QuietHoursEnd),
		UpdatedAt:           p.UpdatedAt,
	}
}

// UpdatePreferencesRequest uses pointers so omitted fields stay as they are.
// Quiet hours bounds are "HH:MM"; an empty string clears one.
type UpdatePreferencesRequest struct {
	EmailInvitations    *bool   `json:"email_invitations"`
	EmailUpdates        *bool   `json:"email_updates"`
	EmailCancellations  *bool   `json:"email_cancellations"`
	EmailReminders      *bool   `json:"email_reminders"`
	SMSInvitations      *bool   `json:"sms_invitations"`
	SMSUpdates          *bool   `json:"sms_updates"`
	SMSCancellations    *bool   `json:"sms_cancellations"`
	SMSReminders        *bool   `json:"sms_reminders"`
	ReminderTimeMinutes *int    `json:"reminder_time_minutes" binding:"omitempty,min=1,max=1440"`
	QuietHoursEnabled   *bool   `json:"quiet_hours_enabled"`
	QuietHoursStart     *string `json:"quiet_hours_start"`
	QuietHoursEnd       *string `json:"quiet_hours_end"`
}

func (r *UpdatePreferencesRequest) toService() notification.UpdatePreferencesRequest {
	return notification.UpdatePreferencesRequest{
		EmailInvitations:   r.EmailInvitations,
		EmailUpdates:       r.EmailUpdates,
		EmailCancellations: r.EmailCancellations,
		EmailReminders:     r.EmailReminders,
		SMSInvitations:     r.SMSInvitations,
		SMSUpdates:         r.SMSUpdates,
		SMSCancellations:   r.SMSCancellations,
		SMSReminders:       r.SMSReminders,
		ReminderMinutes:    r.ReminderTimeMinutes,
		QuietHoursEnabled:  r.QuietHoursEnabled,
		QuietHoursStart:    r.QuietHoursStart,
		QuietHoursEnd:      r.QuietHoursEnd,
	}
}
