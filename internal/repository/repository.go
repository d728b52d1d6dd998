// Package repository implements all database queries for the marketplace.
// It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert collides with a unique key.
var ErrDuplicate = errors.New("already exists")

// ErrAlreadyReconciled is returned when a payment with the same transaction
// id has already been recorded.
var ErrAlreadyReconciled = errors.New("payment already reconciled")

// ErrConflict is returned when a guarded update finds the row in a state
// other than the one the caller checked.
var ErrConflict = errors.New("state changed concurrently")

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// rollback is deferred by transactional methods; it is a no-op after Commit.
func rollback(ctx context.Context, tx pgx.Tx) {
	_ = tx.Rollback(ctx)
}
