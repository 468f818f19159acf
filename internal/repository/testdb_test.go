package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

var (
	testDB     *pgxpool.Pool
	testDBOnce sync.Once
)

// setupTestDatabase connects to TEST_POSTGRES_DSN, applies the schema and
// empties the tables. Tests are skipped when no DSN is configured.
func setupTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	testDBOnce.Do(func() {
		ctx := context.Background()
		db, err := pgxpool.New(ctx, dsn)
		require.NoError(t, err)

		schema, err := os.ReadFile("../../migrations/001_init.sql")
		require.NoError(t, err)
		_, err = db.Exec(ctx, string(schema))
		require.NoError(t, err)

		testDB = db
	})
	require.NotNil(t, testDB)

	cleanupDatabase(t, testDB)
	return testDB
}

func cleanupDatabase(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	for _, table := range []string{"password_reset_tokens", "accounts", "roster_entries"} {
		if _, err := db.Exec(context.Background(), "DELETE FROM "+table); err != nil {
			t.Logf("Warning: failed to cleanup table %s: %v", table, err)
		}
	}
}
