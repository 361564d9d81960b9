package meeting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// Create inserts the meeting and its participants atomically.
	Create(ctx context.Context, m *Meeting) error
	GetByID(ctx context.Context, id string) (*Meeting, error)
	List(ctx context.Context, filter Filter) ([]*Meeting, int, error)
	// Update saves the meeting. When participantIDs is non-nil the participant
	// set is replaced, keeping the responses of people who stay.
	Update(ctx context.Context, m *Meeting, participantIDs []string) error
	// Cancel marks the meeting cancelled and soft deletes it.
	Cancel(ctx context.Context, id string) error
	Respond(ctx context.Context, meetingID, userID string, status ResponseStatus, message string, at time.Time) error

	// FindForPerson returns live, occupying meetings the person organizes or
	// attends that overlap [from, to), without participants.
	FindForPerson(ctx context.Context, personID string, from, to time.Time, excludeID string) ([]*Meeting, error)
	// FindDueReminders returns scheduled meetings starting in [from, to) whose
	// attendees have not all been reminded.
	FindDueReminders(ctx context.Context, from, to time.Time) ([]*Meeting, error)
	// RemindedAttendees returns the attendees of the meeting already reminded.
	RemindedAttendees(ctx context.Context, meetingID string) (map[string]bool, error)
	MarkAttendeesReminded(ctx context.Context, meetingID string, userIDs []string, at time.Time) error
	// MarkReminded records that every attendee of the meeting has been reminded.
	MarkReminded(ctx context.Context, id string, at time.Time) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var meetingColumns = []string{
	"m.id", "m.title", "m.description", "m.organizer_id",
	"COALESCE(u.display_name, u.email)", "u.email",
	"m.start_time", "m.end_time", "m.duration_minutes",
	"m.location_type", "m.physical_address", "m.physical_landmark",
	"m.virtual_platform", "m.virtual_link", "m.virtual_meeting_id", "m.virtual_passcode",
	"m.status", "m.is_private", "m.notes", "m.is_deleted", "m.created_at", "m.updated_at",
}

func selectMeetings(extra ...string) squirrel.SelectBuilder {
	return psql.Select(append(meetingColumns, extra...)...).
		From("public.meetings m").
		Join("public.users u ON u.id = m.organizer_id")
}

func scanMeeting(row pgx.Row, extra ...any) (*Meeting, error) {
	var m Meeting
	dest := []any{
		&m.ID, &m.Title, &m.Description, &m.OrganizerID,
		&m.OrganizerName, &m.OrganizerEmail,
		&m.StartTime, &m.EndTime, &m.DurationMinutes,
		&m.LocationType, &m.PhysicalAddress, &m.PhysicalLandmark,
		&m.VirtualPlatform, &m.VirtualLink, &m.VirtualMeetingID, &m.VirtualPasscode,
		&m.Status, &m.IsPrivate, &m.Notes, &m.IsDeleted, &m.CreatedAt, &m.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	m.Participants = []Participant{}
	return &m, nil
}

func (r *pgxRepository) queryMeetings(ctx context.Context, q squirrel.SelectBuilder) ([]*Meeting, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list meetings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list meetings failed: %w", err)
	}
	defer rows.Close()

	meetings := []*Meeting{}
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meeting failed: %w", err)
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meetings failed: %w", err)
	}
	return meetings, nil
}

// attachParticipants loads the participants of every meeting in one query.
func (r *pgxRepository) attachParticipants(ctx context.Context, meetings []*Meeting) error {
	if len(meetings) == 0 {
		return nil
	}
	byID := make(map[string]*Meeting, len(meetings))
	ids := make([]string, 0, len(meetings))
	for _, m := range meetings {
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}

	query, args, err := psql.Select(
		"mp.meeting_id", "mp.user_id", "COALESCE(u.display_name, u.email)", "u.email",
		"mp.response_status", "mp.response_message", "mp.responded_at",
	).
		From("public.meeting_participants mp").
		Join("public.users u ON u.id = mp.user_id").
		Where(squirrel.Eq{"mp.meeting_id": ids}).
		OrderBy("mp.created_at ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build list participants query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("list participants failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var meetingID string
		var p Participant
		if err := rows.Scan(&meetingID, &p.UserID, &p.Name, &p.Email, &p.ResponseStatus, &p.ResponseMessage, &p.RespondedAt); err != nil {
			return fmt.Errorf("scan participant failed: %w", err)
		}
		if m, ok := byID[meetingID]; ok {
			m.Participants = append(m.Participants, p)
		}
	}
	return rows.Err()
}

func mapWriteError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return ErrParticipantNotFound
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

func insertParticipants(ctx context.Context, tx pgx.Tx, meetingID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	q := psql.Insert("public.meeting_participants").
		Columns("meeting_id", "user_id", "response_status")
	for _, id := range userIDs {
		q = q.Values(meetingID, id, ResponsePending)
	}
	query, args, err := q.Suffix("ON CONFLICT (meeting_id, user_id) DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build insert participants query failed: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return mapWriteError(err, "insert participants")
	}
	return nil
}

func (r *pgxRepository) Create(ctx context.Context, m *Meeting) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create meeting failed: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql.Insert("public.meetings").
		Columns(
			"title", "description", "organizer_id", "start_time", "end_time", "duration_minutes",
			"location_type", "physical_address", "physical_landmark",
			"virtual_platform", "virtual_link", "virtual_meeting_id", "virtual_passcode",
			"status", "is_private", "notes",
		).
		Values(
			m.Title, m.Description, m.OrganizerID, m.StartTime, m.EndTime, m.DurationMinutes,
			m.LocationType, m.PhysicalAddress, m.PhysicalLandmark,
			m.VirtualPlatform, m.VirtualLink, m.VirtualMeetingID, m.VirtualPasscode,
			m.Status, m.IsPrivate, m.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create meeting query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return mapWriteError(err, "create meeting")
	}

	if err := insertParticipants(ctx, tx, m.ID, m.ParticipantIDs()); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create meeting failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Meeting, error) {
	query, args, err := selectMeetings().Where(squirrel.Eq{"m.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get meeting query failed: %w", err)
	}

	m, err := scanMeeting(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get meeting failed: %w", err)
	}

	if err := r.attachParticipants(ctx, []*Meeting{m}); err != nil {
		return nil, err
	}
	return m, nil
}

func involves(userID string) squirrel.Sqlizer {
	return squirrel.Or{
		squirrel.Eq{"m.organizer_id": userID},
		squirrel.Expr("EXISTS (SELECT 1 FROM public.meeting_participants mp WHERE mp.meeting_id = m.id AND mp.user_id = ?)", userID),
	}
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Meeting, int, error) {
	q := selectMeetings("count(*) OVER() AS total_count").
		Where(squirrel.Eq{"m.is_deleted": false}).
		Where(involves(filter.UserID))

	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"m.status": filter.Status})
	}
	if filter.StartFrom != nil {
		q = q.Where(squirrel.GtOrEq{"m.start_time": *filter.StartFrom})
	}
	if filter.StartBefore != nil {
		q = q.Where(squirrel.Lt{"m.start_time": *filter.StartBefore})
	}

	orderDir := "ASC"
	if filter.SortOrder == "DESC" {
		orderDir = "DESC"
	}
	q = q.OrderBy("m.start_time " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	q = q.Limit(uint64(filter.PageSize)).Offset(uint64((filter.Page - 1) * filter.PageSize))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list meetings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list meetings failed: %w", err)
	}
	defer rows.Close()

	meetings := []*Meeting{}
	var total int
	for rows.Next() {
		m, err := scanMeeting(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan meeting failed: %w", err)
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate meetings failed: %w", err)
	}

	if err := r.attachParticipants(ctx, meetings); err != nil {
		return nil, 0, err
	}
	return meetings, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, m *Meeting, participantIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update meeting failed: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql.Update("public.meetings").
		Set("title", m.Title).
		Set("description", m.Description).
		Set("start_time", m.StartTime).
		Set("end_time", m.EndTime).
		Set("duration_minutes", m.DurationMinutes).
		Set("location_type", m.LocationType).
		Set("physical_address", m.PhysicalAddress).
		Set("physical_landmark", m.PhysicalLandmark).
		Set("virtual_platform", m.VirtualPlatform).
		Set("virtual_link", m.VirtualLink).
		Set("virtual_meeting_id", m.VirtualMeetingID).
		Set("virtual_passcode", m.VirtualPasscode).
		Set("status", m.Status).
		Set("is_private", m.IsPrivate).
		Set("notes", m.Notes).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": m.ID, "is_deleted": false}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update meeting query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update meeting failed: %w", err)
	}

	if participantIDs != nil {
		del := psql.Delete("public.meeting_participants").Where(squirrel.Eq{"meeting_id": m.ID})
		if len(participantIDs) > 0 {
			del = del.Where(squirrel.NotEq{"user_id": participantIDs})
		}
		query, args, err := del.ToSql()
		if err != nil {
			return fmt.Errorf("build remove participants query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("remove participants failed: %w", err)
		}
		if err := insertParticipants(ctx, tx, m.ID, participantIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update meeting failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Cancel(ctx context.Context, id string) error {
	query, args, err := psql.Update("public.meetings").
		Set("status", StatusCancelled).
		Set("is_deleted", true).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build cancel meeting query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("cancel meeting failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Respond(ctx context.Context, meetingID, userID string, status ResponseStatus, message string, at time.Time) error {
	query, args, err := psql.Update("public.meeting_participants").
		Set("response_status", status).
		Set("response_message", message).
		Set("responded_at", at).
		Where(squirrel.Eq{"meeting_id": meetingID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build respond query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("respond to meeting failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotParticipant
	}
	return nil
}

func (r *pgxRepository) FindForPerson(ctx context.Context, personID string, from, to time.Time, excludeID string) ([]*Meeting, error) {
	q := selectMeetings().
		Where(squirrel.Eq{"m.is_deleted": false}).
		Where(squirrel.Eq{"m.status": []Status{StatusScheduled, StatusInProgress}}).
		Where(squirrel.Lt{"m.start_time": to}).
		Where(squirrel.Gt{"m.end_time": from}).
		Where(involves(personID)).
		OrderBy("m.start_time ASC")
	if excludeID != "" {
		q = q.Where(squirrel.NotEq{"m.id": excludeID})
	}
	return r.queryMeetings(ctx, q)
}

func (r *pgxRepository) FindDueReminders(ctx context.Context, from, to time.Time) ([]*Meeting, error) {
	q := selectMeetings().
		Where(squirrel.Eq{"m.is_deleted": false, "m.status": StatusScheduled, "m.reminder_sent_at": nil}).
		Where(squirrel.GtOrEq{"m.start_time": from}).
		Where(squirrel.Lt{"m.start_time": to}).
		OrderBy("m.start_time ASC")

	meetings, err := r.queryMeetings(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := r.attachParticipants(ctx, meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

func (r *pgxRepository) MarkReminded(ctx context.Context, id string, at time.Time) error {
	query, args, err := psql.Update("public.meetings").
		Set("reminder_sent_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark reminded query failed: %w", err)
	}
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("mark reminded failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) RemindedAttendees(ctx context.Context, meetingID string) (map[string]bool, error) {
	query, args, err := psql.Select("user_id").
		From("public.meeting_reminders").
		Where(squirrel.Eq{"meeting_id": meetingID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reminded attendees query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reminded attendees failed: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan reminded attendees failed: %w", err)
	}

	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *pgxRepository) MarkAttendeesReminded(ctx context.Context, meetingID string, userIDs []string, at time.Time) error {
	if len(userIDs) == 0 {
		return nil
	}
	q := psql.Insert("public.meeting_reminders").Columns("meeting_id", "user_id", "sent_at")
	for _, id := range userIDs {
		q = q.Values(meetingID, id, at)
	}
	query, args, err := q.Suffix("ON CONFLICT (meeting_id, user_id) DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build mark attendees reminded query failed: %w", err)
	}
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("mark attendees reminded failed: %w", err)
	}
	return nil
}
