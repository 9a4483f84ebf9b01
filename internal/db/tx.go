package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/Spok95/academic-eval/internal/ctxutil"
)

// Querier — общее у *sql.DB и *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// serializationRetries — сколько раз повторяем serializable-транзакцию при 40001.
const serializationRetries = 3

// Store — шлюз к хранилищу. Если в контексте есть открытая транзакция,
// все запросы идут через неё.
type Store struct {
	DB *sql.DB
}

func NewStore(database *sql.DB) *Store { return &Store{DB: database} }

func (s *Store) q(ctx context.Context) Querier {
	if tx, ok := ctxutil.Tx(ctx); ok {
		return tx
	}
	return s.DB
}

// InTx выполняет fn в одной транзакции READ COMMITTED.
// Вложенный вызов переиспользует уже открытую транзакцию.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.inTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// InSerializableTx — то же в SERIALIZABLE, с повтором при ошибке сериализации.
func (s *Store) InSerializableTx(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < serializationRetries; attempt++ {
		err = s.inTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
		if err == nil || !IsSerializationFailure(err) {
			return err
		}
	}
	return fmt.Errorf("serializable tx: %d attempts: %w", serializationRetries, err)
}

func (s *Store) inTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	if _, ok := ctxutil.Tx(ctx); ok {
		return fn(ctx)
	}
	tx, err := s.DB.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctxutil.WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// IsSerializationFailure — SQLSTATE 40001 от pgx или lib/pq.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001"
	}
	return false
}
