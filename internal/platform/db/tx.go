package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrTxConflict signals a lock timeout or serialization failure. Callers may
// retry the whole operation with backoff.
var ErrTxConflict = errors.New("platform/db: transaction conflict")

// defaultLockTimeout bounds row-lock waits inside a transaction so contended
// ledger rows surface a retryable conflict instead of hanging the request.
const defaultLockTimeout = "3s"

// WithTx executes a function within a transaction using the RepeatableRead
// isolation level. Lock waits are bounded by a per-transaction lock_timeout.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%s'", defaultLockTimeout)); err != nil {
		return fmt.Errorf("platform/db: set lock timeout: %w", err)
	}

	if err := fn(tx); err != nil {
		if IsConflict(err) {
			return fmt.Errorf("%w: %v", ErrTxConflict, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if IsConflict(err) {
			return fmt.Errorf("%w: %v", ErrTxConflict, err)
		}
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}

	return nil
}

// IsConflict reports whether err is a lock timeout, deadlock, or
// serialization failure.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "55P03":
		return true
	default:
		return false
	}
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
