package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/academic-eval/internal/models"
)

func CreateLocation(ctx context.Context, q Querier, l *models.Location) error {
	return q.QueryRowContext(ctx, `
		INSERT INTO locations (name, type, street, city, state, postal_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, l.Name, l.Type, l.Street, l.City, l.State, l.PostalCode).Scan(&l.ID)
}

func GetLocationByID(ctx context.Context, q Querier, id int64) (*models.Location, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, type, street, city, state, postal_code
		FROM locations WHERE id = $1
	`, id)
	var l models.Location
	if err := row.Scan(&l.ID, &l.Name, &l.Type, &l.Street, &l.City, &l.State, &l.PostalCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// CreateDiscipline — идемпотентно по code.
func CreateDiscipline(ctx context.Context, q Querier, d *models.Discipline) error {
	return q.QueryRowContext(ctx, `
		INSERT INTO disciplines (code, name) VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, d.Code, d.Name).Scan(&d.ID)
}

func CreateClass(ctx context.Context, q Querier, c *models.Class) error {
	return q.QueryRowContext(ctx, `
		INSERT INTO classes (discipline_id, name, term) VALUES ($1, $2, $3)
		RETURNING id
	`, c.DisciplineID, c.Name, c.Term).Scan(&c.ID)
}
