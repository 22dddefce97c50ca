// Package pgtest starts a disposable PostgreSQL for tests and loads the
// application schema into it.
package pgtest

import (
	"context"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// Setup creates a PostgreSQL test container with the schema applied. The
// container is terminated when the test finishes. Skipped with -short.
func Setup(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, config.DatabaseConfig{MaxConnections: 10, MinConnections: 1}, logger)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, logger))

	t.Cleanup(func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: pgContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Reset removes all rows and restarts the id sequences.
func (db *TestDB) Reset(t *testing.T) {
	t.Helper()

	_, err := db.Pool.Exec(context.Background(), `
		TRUNCATE order_items, orders, customers, promo_codes, products, categories, store_settings, users
		RESTART IDENTITY CASCADE
	`)
	require.NoError(t, err)
}

// Exec runs a statement and fails the test on error.
func (db *TestDB) Exec(t *testing.T, sql string, args ...any) {
	t.Helper()

	_, err := db.Pool.Exec(context.Background(), sql, args...)
	require.NoError(t, err)
}

// InsertID runs an INSERT ... RETURNING id and returns the id.
func (db *TestDB) InsertID(t *testing.T, sql string, args ...any) int64 {
	t.Helper()

	var id int64
	require.NoError(t, db.Pool.QueryRow(context.Background(), sql, args...).Scan(&id))
	return id
}
