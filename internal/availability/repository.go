package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling"
)

type Repository interface {
	ListWindows(ctx context.Context, userID string, activeOnly bool) ([]*Window, error)
	// ListLiveWindows returns active windows for the weekday whose effective range contains asOf's date.
	ListLiveWindows(ctx context.Context, userID string, dayOfWeek int, asOf time.Time) ([]*Window, error)
	GetWindow(ctx context.Context, id string) (*Window, error)
	CreateWindow(ctx context.Context, w *Window) error
	UpdateWindow(ctx context.Context, w *Window) error
	DeleteWindow(ctx context.Context, id string) error
	// ReplaceWeekdayWindows atomically swaps the user's Monday to Friday windows for the given ones.
	ReplaceWeekdayWindows(ctx context.Context, userID string, windows []*Window) error

	ListBlockedTimes(ctx context.Context, filter BlockedTimeFilter) ([]*BlockedTime, error)
	GetBlockedTime(ctx context.Context, id string) (*BlockedTime, error)
	CreateBlockedTime(ctx context.Context, b *BlockedTime) error
	DeleteBlockedTime(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var windowColumns = []string{
	"id", "user_id", "day_of_week", "start_time", "end_time",
	"effective_from", "effective_until", "is_active", "created_at", "updated_at",
}

var blockedColumns = []string{
	"id", "user_id", "start_time", "end_time", "reason", "description",
	"is_all_day", "created_at", "updated_at",
}

func toPgTime(t scheduling.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: time.Duration(t).Microseconds(), Valid: true}
}

func fromPgTime(t pgtype.Time) scheduling.TimeOfDay {
	return scheduling.TimeOfDay(time.Duration(t.Microseconds) * time.Microsecond)
}

func scanWindow(row pgx.Row) (*Window, error) {
	var w Window
	var start, end pgtype.Time
	if err := row.Scan(
		&w.ID, &w.UserID, &w.DayOfWeek, &start, &end,
		&w.EffectiveFrom, &w.EffectiveUntil, &w.IsActive, &w.CreatedAt, &w.UpdatedAt,
	); err != nil {
		return nil, err
	}
	w.StartTime = fromPgTime(start)
	w.EndTime = fromPgTime(end)
	return &w, nil
}

func (r *pgxRepository) queryWindows(ctx context.Context, q squirrel.SelectBuilder) ([]*Window, error) {
	query, args, err := q.OrderBy("day_of_week ASC", "start_time ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list windows query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list windows failed: %w", err)
	}
	defer rows.Close()

	windows := []*Window{}
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan window failed: %w", err)
		}
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate windows failed: %w", err)
	}
	return windows, nil
}

func (r *pgxRepository) ListWindows(ctx context.Context, userID string, activeOnly bool) ([]*Window, error) {
	q := psql.Select(windowColumns...).
		From("public.availability_windows").
		Where(squirrel.Eq{"user_id": userID})
	if activeOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}
	return r.queryWindows(ctx, q)
}

func (r *pgxRepository) ListLiveWindows(ctx context.Context, userID string, dayOfWeek int, asOf time.Time) ([]*Window, error) {
	y, m, d := asOf.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	q := psql.Select(windowColumns...).
		From("public.availability_windows").
		Where(squirrel.Eq{"user_id": userID, "day_of_week": dayOfWeek, "is_active": true}).
		Where(squirrel.Or{squirrel.Eq{"effective_from": nil}, squirrel.LtOrEq{"effective_from": date}}).
		Where(squirrel.Or{squirrel.Eq{"effective_until": nil}, squirrel.GtOrEq{"effective_until": date}})
	return r.queryWindows(ctx, q)
}

func (r *pgxRepository) GetWindow(ctx context.Context, id string) (*Window, error) {
	query, args, err := psql.Select(windowColumns...).
		From("public.availability_windows").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get window query failed: %w", err)
	}

	w, err := scanWindow(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get window failed: %w", err)
	}
	return w, nil
}

// rowQuerier is satisfied by both the pool and a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertWindow(ctx context.Context, q rowQuerier, w *Window) error {
	query, args, err := psql.Insert("public.availability_windows").
		Columns("user_id", "day_of_week", "start_time", "end_time", "effective_from", "effective_until", "is_active").
		Values(w.UserID, w.DayOfWeek, toPgTime(w.StartTime), toPgTime(w.EndTime), w.EffectiveFrom, w.EffectiveUntil, w.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create window query failed: %w", err)
	}

	if err := q.QueryRow(ctx, query, args...).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return fmt.Errorf("create window failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) CreateWindow(ctx context.Context, w *Window) error {
	return insertWindow(ctx, r.pool, w)
}

func (r *pgxRepository) UpdateWindow(ctx context.Context, w *Window) error {
	query, args, err := psql.Update("public.availability_windows").
		Set("day_of_week", w.DayOfWeek).
		Set("start_time", toPgTime(w.StartTime)).
		Set("end_time", toPgTime(w.EndTime)).
		Set("effective_from", w.EffectiveFrom).
		Set("effective_until", w.EffectiveUntil).
		Set("is_active", w.IsActive).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": w.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update window query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update window failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) DeleteWindow(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.availability_windows").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete window query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete window failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ReplaceWeekdayWindows(ctx context.Context, userID string, windows []*Window) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace windows failed: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql.Delete("public.availability_windows").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Lt{"day_of_week": 5}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear weekday windows query failed: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("clear weekday windows failed: %w", err)
	}

	for _, w := range windows {
		if err := insertWindow(ctx, tx, w); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace windows failed: %w", err)
	}
	return nil
}

func scanBlockedTime(row pgx.Row) (*BlockedTime, error) {
	var b BlockedTime
	if err := row.Scan(
		&b.ID, &b.UserID, &b.StartTime, &b.EndTime, &b.Reason, &b.Description,
		&b.IsAllDay, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) ListBlockedTimes(ctx context.Context, filter BlockedTimeFilter) ([]*BlockedTime, error) {
	q := psql.Select(blockedColumns...).
		From("public.blocked_times").
		Where(squirrel.Eq{"user_id": filter.UserID})
	if filter.EndsAfter != nil {
		q = q.Where(squirrel.GtOrEq{"end_time": *filter.EndsAfter})
	}
	if filter.StartsUntil != nil {
		q = q.Where(squirrel.LtOrEq{"start_time": *filter.StartsUntil})
	}

	query, args, err := q.OrderBy("start_time ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list blocked times query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list blocked times failed: %w", err)
	}
	defer rows.Close()

	items := []*BlockedTime{}
	for rows.Next() {
		b, err := scanBlockedTime(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blocked time failed: %w", err)
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocked times failed: %w", err)
	}
	return items, nil
}

func (r *pgxRepository) GetBlockedTime(ctx context.Context, id string) (*BlockedTime, error) {
	query, args, err := psql.Select(blockedColumns...).
		From("public.blocked_times").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get blocked time query failed: %w", err)
	}

	b, err := scanBlockedTime(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBlockedTimeNotFound
		}
		return nil, fmt.Errorf("get blocked time failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) CreateBlockedTime(ctx context.Context, b *BlockedTime) error {
	query, args, err := psql.Insert("public.blocked_times").
		Columns("user_id", "start_time", "end_time", "reason", "description", "is_all_day").
		Values(b.UserID, b.StartTime, b.EndTime, b.Reason, b.Description, b.IsAllDay).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create blocked time query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("create blocked time failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) DeleteBlockedTime(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.blocked_times").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete blocked time query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete blocked time failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrBlockedTimeNotFound
	}
	return nil
}
