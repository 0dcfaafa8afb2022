package store

import (
	"context"
	"fmt"

	db "github.com/JonMunkholm/bizsight/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the production Store backed by a pgx connection pool.
type Postgres struct {
	*db.Queries
	pool *pgxpool.Pool
}

// NewPostgres wraps pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{
		Queries: db.New(pool),
		pool:    pool,
	}
}

// Begin opens a batch transaction.
func (p *Postgres) Begin(ctx context.Context) (Batch, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgBatch{tx: tx, q: db.New(tx)}, nil
}

// Ping checks database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

type pgBatch struct {
	tx  pgx.Tx
	q   *db.Queries
	seq int
}

func (b *pgBatch) Do(ctx context.Context, fn func(q db.Querier) error) error {
	b.seq++
	sp := fmt.Sprintf("sp_%d", b.seq)

	if _, err := b.tx.Exec(ctx, "SAVEPOINT "+sp); err != nil {
		return fmt.Errorf("%w: create savepoint: %v", ErrBatchAborted, err)
	}

	if err := fn(b.q); err != nil {
		if _, rbErr := b.tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+sp); rbErr != nil {
			return fmt.Errorf("%w: rollback savepoint: %v (row error: %v)", ErrBatchAborted, rbErr, err)
		}
		return err
	}

	if _, err := b.tx.Exec(ctx, "RELEASE SAVEPOINT "+sp); err != nil {
		return fmt.Errorf("%w: release savepoint: %v", ErrBatchAborted, err)
	}
	return nil
}

func (b *pgBatch) Commit(ctx context.Context) error {
	return b.tx.Commit(ctx)
}

func (b *pgBatch) Rollback(ctx context.Context) error {
	return b.tx.Rollback(ctx)
}
