//go:build integration

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	db "github.com/JonMunkholm/bizsight/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *Postgres {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("bizsight"),
		postgres.WithUsername("bizsight"),
		postgres.WithPassword("bizsight"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, db.MigrateUp(url))

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewPostgres(pool)
}

func createUser(t *testing.T, s Store) uuid.UUID {
	t.Helper()
	u, err := s.CreateUser(context.Background(), db.CreateUserParams{
		FullName: "Test User", Username: "test", Email: "test@example.com",
		PasswordHash: "x", MobileNumber: "5551234567",
	})
	require.NoError(t, err)
	return u.ID
}

func TestPostgres_BatchSavepoints(t *testing.T) {
	ctx := context.Background()
	s := setupPostgres(t)
	user := createUser(t, s)

	batch, err := s.Begin(ctx)
	require.NoError(t, err)
	defer batch.Rollback(ctx)

	require.NoError(t, batch.Do(ctx, func(q db.Querier) error {
		_, err := q.CreateProduct(ctx, db.CreateProductParams{UserID: user, Name: "Widget", Price: money("4.50"), Stock: 3, Category: "Other"})
		return err
	}))

	// A check violation aborts only its own savepoint.
	err = batch.Do(ctx, func(q db.Querier) error {
		_, err := q.CreateProduct(ctx, db.CreateProductParams{UserID: user, Name: "Bad", Price: money("1"), Stock: -1, Category: "Other"})
		return err
	})
	name, ok := Violation(err, CodeCheckViolation)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "products_stock_nonnegative", name)
	assert.False(t, errors.Is(err, ErrBatchAborted))

	err = batch.Do(ctx, func(q db.Querier) error {
		_, err := q.CreateProduct(ctx, db.CreateProductParams{UserID: user, Name: "Widget", Price: money("1"), Category: "Other"})
		return err
	})
	_, ok = Violation(err, CodeUniqueViolation)
	require.True(t, ok, "got %v", err)

	require.NoError(t, batch.Commit(ctx))

	products, err := s.ListProductsByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int32(3), products[0].Stock)
}

func TestPostgres_DecrementGuard(t *testing.T) {
	ctx := context.Background()
	s := setupPostgres(t)
	user := createUser(t, s)
	p := seedProduct(t, s, user, "Widget", 3)

	_, err := s.DecrementProductStock(ctx, db.DecrementProductStockParams{Quantity: 5, ID: p.ID, UserID: user})
	assert.True(t, IsNotFound(err))

	got, err := s.DecrementProductStock(ctx, db.DecrementProductStockParams{Quantity: 2, ID: p.ID, UserID: user})
	require.NoError(t, err)
	assert.Equal(t, int32(1), got.Stock)
}
