// Package store wraps the generated queries with the transaction shape the
// import pipeline needs: one batch transaction per upload, with every row
// applied behind its own savepoint so a failed row never poisons the rest.
package store

import (
	"context"
	"errors"
	"fmt"

	db "github.com/JonMunkholm/bizsight/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes surfaced to callers as row-level failures.
const (
	CodeUniqueViolation     = "23505"
	CodeCheckViolation      = "23514"
	CodeForeignKeyViolation = "23503"
)

// ErrBatchAborted means the batch transaction itself is unusable (a savepoint
// could not be created, rolled back or released). Callers must stop applying
// rows and roll the batch back.
var ErrBatchAborted = errors.New("batch transaction aborted")

// Store is the persistence surface used by the service layer. Query methods
// called directly on a Store run outside any batch.
type Store interface {
	db.Querier
	Begin(ctx context.Context) (Batch, error)
	Ping(ctx context.Context) error
}

// Batch is a transaction in which work is applied in savepoint-isolated units.
type Batch interface {
	// Do runs fn behind a savepoint. If fn returns an error every write it
	// made is undone, the error is returned unchanged and the batch stays
	// usable. Errors wrapping ErrBatchAborted mean the batch is not.
	Do(ctx context.Context, fn func(q db.Querier) error) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// InTx runs fn as a single unit in its own batch and commits it.
func InTx(ctx context.Context, s Store, fn func(q db.Querier) error) error {
	batch, err := s.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer batch.Rollback(ctx)

	if err := batch.Do(ctx, fn); err != nil {
		return err
	}
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// IsNotFound reports whether err means a :one query matched no row.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Violation returns the constraint name when err is a Postgres integrity
// error with the given SQLSTATE code.
func Violation(err error, code string) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr.ConstraintName, true
	}
	return "", false
}
