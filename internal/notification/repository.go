package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*Preferences, error)
	Upsert(ctx context.Context, p *Preferences) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) Get(ctx context.Context, userID string) (*Preferences, error) {
	query, args, err := psql.Select(
		"user_id",
		"email_invitations", "email_updates", "email_cancellations", "email_reminders",
		"sms_invitations", "sms_updates", "sms_cancellations", "sms_reminders",
		"reminder_minutes", "quiet_hours_enabled", "quiet_hours_start", "quiet_hours_end",
		"updated_at",
	).
		From("public.notification_preferences").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get preferences query failed: %w", err)
	}

	var (
		p          Preferences
		start, end pgtype.Time
	)
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&p.UserID,
		&p.EmailInvitations, &p.EmailUpdates, &p.EmailCancellations, &p.EmailReminders,
		&p.SMSInvitations, &p.SMSUpdates, &p.SMSCancellations, &p.SMSReminders,
		&p.ReminderMinutes, &p.QuietHoursEnabled, &start, &end,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get preferences failed: %w", err)
	}
	p.QuietHoursStart = fromPgTime(start)
	p.QuietHoursEnd = fromPgTime(end)
	return &p, nil
}

func fromPgTime(t pgtype.Time) *TimeOfDay {
	if !t.Valid {
		return nil
	}
	v := TimeOfDay(t.Microseconds / int64(time.Minute/time.Microsecond))
	return &v
}

func toPgTime(t *TimeOfDay) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: int64(*t) * int64(time.Minute/time.Microsecond), Valid: true}
}

func (r *pgxRepository) Upsert(ctx context.Context, p *Preferences) error {
	query, args, err := psql.Insert("public.notification_preferences").
		Columns(
			"user_id",
			"email_invitations", "email_updates", "email_cancellations", "email_reminders",
			"sms_invitations", "sms_updates", "sms_cancellations", "sms_reminders",
			"reminder_minutes", "quiet_hours_enabled", "quiet_hours_start", "quiet_hours_end",
		).
		Values(
			p.UserID,
			p.EmailInvitations, p.EmailUpdates, p.EmailCancellations, p.EmailReminders,
			p.SMSInvitations, p.SMSUpdates, p.SMSCancellations, p.SMSReminders,
			p.ReminderMinutes, p.QuietHoursEnabled, toPgTime(p.QuietHoursStart), toPgTime(p.QuietHoursEnd),
		).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			email_invitations = EXCLUDED.email_invitations,
			email_updates = EXCLUDED.email_updates,
			email_cancellations = EXCLUDED.email_cancellations,
			email_reminders = EXCLUDED.email_reminders,
			sms_invitations = EXCLUDED.sms_invitations,
			sms_updates = EXCLUDED.sms_updates,
			sms_cancellations = EXCLUDED.sms_cancellations,
			sms_reminders = EXCLUDED.sms_reminders,
			reminder_minutes = EXCLUDED.reminder_minutes,
			quiet_hours_enabled = EXCLUDED.quiet_hours_enabled,
			quiet_hours_start = EXCLUDED.quiet_hours_start,
			quiet_hours_end = EXCLUDED.quiet_hours_end,
			updated_at = now()
		RETURNING updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert preferences query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&p.UpdatedAt); err != nil {
		return fmt.Errorf("upsert preferences failed: %w", err)
	}
	return nil
}
