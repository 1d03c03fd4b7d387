package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/paulexconde/npsdash/pkg/fault"
)

type dataStore[T any] struct {
	db        *sqlx.DB
	tablename string
	columns   string
}

func NewDataStore[T any](db *sqlx.DB, tablename string) *dataStore[T] {
	return &dataStore[T]{
		db:        db,
		tablename: tablename,
		columns:   strings.Join(getStructFieldNamesFromInstance(new(T)), ", "),
	}
}

func (s *dataStore[T]) Base() *sqlx.DB {
	return s.db
}

func (s *dataStore[T]) Columns() string {
	return s.columns
}

func (s *dataStore[T]) Table() string {
	return s.tablename
}

func (s *dataStore[T]) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *dataStore[T]) QueryRow(ctx context.Context, query string, args ...any) (any, error) {
	row := s.db.QueryRowContext(ctx, query, args...)

	var result any

	err := row.Scan(&result)
	if err != nil {
		return nil, mapError(err)
	}

	return result, nil
}

func (s *dataStore[T]) Get(ctx context.Context, query string, args ...any) (*T, error) {
	var result T

	if err := s.db.GetContext(ctx, &result, query, args...); err != nil {
		return nil, mapError(err)
	}

	return &result, nil
}

func (s *dataStore[T]) Select(ctx context.Context, query string, args ...any) ([]T, error) {
	results := []T{}

	if err := s.db.SelectContext(ctx, &results, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []T{}, nil
		}
		return nil, mapError(err)
	}

	return results, nil
}

// mapError turns driver errors into the fault sentinels, keeping the
// original error in the chain.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fault.ErrNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", fault.ErrQueryCanceled, err)
	}

	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "57014": // query_canceled
			return fmt.Errorf("%w: %w", fault.ErrQueryCanceled, err)
		case pgErr.Code.Class() == "08": // connection_exception
			return fmt.Errorf("%w: %w", fault.ErrUnavailable, err)
		}
	}
	return err
}
