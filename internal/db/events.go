package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Spok95/academic-eval/internal/models"
)

const eventColumns = `id, title, description, start_at, end_at, location_id, discipline_id, class_id,
		responsible_user_id, type, status, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(r rowScanner) (*models.Event, error) {
	var (
		e                             models.Event
		end                           sql.NullTime
		loc, disc, class, responsible sql.NullInt64
	)
	if err := r.Scan(&e.ID, &e.Title, &e.Description, &e.StartAt, &end, &loc, &disc, &class,
		&responsible, &e.Type, &e.Status, &e.Version, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if end.Valid {
		t := end.Time
		e.EndAt = &t
	}
	e.LocationID = nullInt64Ptr(loc)
	e.DisciplineID = nullInt64Ptr(disc)
	e.ClassID = nullInt64Ptr(class)
	e.ResponsibleUserID = nullInt64Ptr(responsible)
	return &e, nil
}

func CreateEvent(ctx context.Context, q Querier, e *models.Event) error {
	return q.QueryRowContext(ctx, `
		INSERT INTO events (title, description, start_at, end_at, location_id, discipline_id, class_id,
		                    responsible_user_id, type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, version, created_at, updated_at
	`, e.Title, e.Description, e.StartAt, e.EndAt, e.LocationID, e.DisciplineID, e.ClassID,
		e.ResponsibleUserID, string(e.Type), string(e.Status),
	).Scan(&e.ID, &e.Version, &e.CreatedAt, &e.UpdatedAt)
}

func GetEventByID(ctx context.Context, q Querier, id int64) (*models.Event, error) {
	e, err := scanEvent(q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// ListActiveEventsAtLocation — все неотменённые события локации.
// Пересечение по времени считает вызывающий.
func ListActiveEventsAtLocation(ctx context.Context, q Querier, locationID int64) ([]models.Event, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE location_id = $1 AND status <> 'cancelled'
		ORDER BY start_at, id
	`, locationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// UpdateEvent — обновление с проверкой версии. false — версия не совпала (или события нет).
func UpdateEvent(ctx context.Context, q Querier, e *models.Event, expectedVersion int64) (bool, error) {
	err := q.QueryRowContext(ctx, `
		UPDATE events
		SET title = $1, description = $2, start_at = $3, end_at = $4, location_id = $5,
		    discipline_id = $6, class_id = $7, responsible_user_id = $8, type = $9,
		    version = version + 1, updated_at = now()
		WHERE id = $10 AND version = $11
		RETURNING version, updated_at
	`, e.Title, e.Description, e.StartAt, e.EndAt, e.LocationID, e.DisciplineID, e.ClassID,
		e.ResponsibleUserID, string(e.Type), e.ID, expectedVersion,
	).Scan(&e.Version, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetEventStatus — атомарный переход from → to. false — статус уже другой.
func SetEventStatus(ctx context.Context, q Querier, id int64, from, to models.EventStatus) (bool, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE events
		SET status = $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND status = $3
	`, string(to), id, string(from))
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// AdvanceEventStatuses — scheduled → in_progress по началу, in_progress → completed по окончанию.
// Уже закончившееся событие проходит оба шага за один вызов.
func AdvanceEventStatuses(ctx context.Context, q Querier, now time.Time) (started, completed []int64, err error) {
	started, err = collectIDs(ctx, q, `
		UPDATE events
		SET status = 'in_progress', version = version + 1, updated_at = now()
		WHERE status = 'scheduled' AND start_at <= $1
		RETURNING id
	`, now)
	if err != nil {
		return nil, nil, err
	}
	completed, err = collectIDs(ctx, q, `
		UPDATE events
		SET status = 'completed', version = version + 1, updated_at = now()
		WHERE status = 'in_progress' AND end_at IS NOT NULL AND end_at <= $1
		RETURNING id
	`, now)
	if err != nil {
		return nil, nil, err
	}
	return started, completed, nil
}

func collectIDs(ctx context.Context, q Querier, query string, args ...any) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	x := v.Int64
	return &x
}
