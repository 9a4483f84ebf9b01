package db

import (
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/Spok95/academic-eval/internal/db/migrations"
)

// Migrate накатывает встроенные миграции (goose, -- +goose Up/Down).
func Migrate(database *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(database, ".")
}
