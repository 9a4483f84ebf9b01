package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/Spok95/academic-eval/internal/models"
)

func CreateUser(ctx context.Context, q Querier, u *models.User) error {
	var email sql.NullString
	if u.Email != "" {
		email = sql.NullString{String: u.Email, Valid: true}
	}
	return q.QueryRowContext(ctx, `
		INSERT INTO users (name, email, role, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, u.Name, email, string(u.Role), u.IsActive).Scan(&u.ID, &u.CreatedAt)
}

func GetUserByID(ctx context.Context, q Querier, id int64) (*models.User, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(email, ''), role, is_active, created_at
		FROM users WHERE id = $1
	`, id)
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// ListUsersByIDs — пачкой, для отчётов (субъект + оценщик одной выборкой).
func ListUsersByIDs(ctx context.Context, q Querier, ids []int64) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, COALESCE(email, ''), role, is_active, created_at
		FROM users WHERE id = ANY($1)
		ORDER BY id
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]models.User, 0, len(ids))
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
