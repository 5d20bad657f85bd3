// Package sqlite implements task.Repository on an embedded SQLite database.
// Dates are stored as YYYY-MM-DD text and timestamps as fixed-width UTC
// text so that string order matches time order.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/rezkam/taskboard/internal/application/task"
	"github.com/rezkam/taskboard/internal/domain"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store provides the SQLite implementation of task.Repository.
type Store struct {
	db   *sql.DB
	q    querier
	inTx bool
	now  func() time.Time
}

var _ task.Repository = (*Store)(nil)

// NewStore wraps an open database. The schema must already exist.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:  db,
		q:   db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks the database is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func finalizeTx(ctx context.Context, tx *sql.Tx, err *error) {
	if *err != nil {
		if _, ok := domain.AsValidationError(*err); ok {
			slog.DebugContext(ctx, "transaction rejected, rolling back", "error", *err)
		} else {
			slog.ErrorContext(ctx, "transaction failed, rolling back", "error", *err)
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "rollback failed",
				"original_error", *err,
				"rollback_error", rbErr)
			*err = fmt.Errorf("transaction failed: %w (rollback error: %v)", *err, rbErr)
		}
		return
	}
	if *err = tx.Commit(); *err != nil {
		slog.ErrorContext(ctx, "transaction commit failed", "error", *err)
	}
}

func (s *Store) executeInTransaction(ctx context.Context, operationName string, fn func(txStore *Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}

	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to begin transaction",
			"operation", operationName,
			"error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			slog.ErrorContext(ctx, "transaction panic, rolling back",
				"operation", operationName,
				"panic", p)
			_ = tx.Rollback()
			panic(p)
		}

		finalizeTx(ctx, tx, &err)
		if err == nil {
			slog.DebugContext(ctx, "transaction completed",
				"operation", operationName,
				"duration_ms", time.Since(start).Milliseconds())
		}
	}()

	err = fn(&Store{db: s.db, q: tx, inTx: true, now: s.now})
	return
}

// Atomic executes fn within a transaction; nested calls reuse it.
func (s *Store) Atomic(ctx context.Context, fn func(tx task.Repository) error) error {
	return s.executeInTransaction(ctx, "atomic", func(txStore *Store) error {
		return fn(txStore)
	})
}
