package database

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB connects a private pool to TEST_DATABASE_URL for tests that need to
// run migrations themselves. The pool is closed when the test ends. Without
// TEST_DATABASE_URL the test is skipped.
func TestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	pool, err := Connect(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

// CleanupTables empties kv_store so each storage test starts with no keys.
func CleanupTables(t *testing.T, db PGXDB) {
	t.Helper()

	if _, err := db.Exec(context.Background(), "TRUNCATE TABLE "+KVTable); err != nil {
		t.Fatalf("failed to truncate %s: %v", KVTable, err)
	}
}
