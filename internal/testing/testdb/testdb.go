// Package testdb provides isolated PostgreSQL schemas for tests.
//
// Each TestDB migrates a fresh schema and drops it on cleanup, so tests may
// run in parallel against one database. Tests are skipped when
// TEST_DATABASE_URL is unset.
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    store := clinic.NewPGStore(tdb.Pool)
//	}
package testdb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicsys/clinic/internal/platform/db"
	"github.com/clinicsys/clinic/migrations"
)

// EnvURL names the variable holding the test database connection string.
const EnvURL = "TEST_DATABASE_URL"

// TestDB is a pool bound to a schema owned by one test.
type TestDB struct {
	Pool   *pgxpool.Pool
	Schema string
}

var (
	counterMu sync.Mutex
	counter   int64
)

func uniqueSchema() string {
	counterMu.Lock()
	defer counterMu.Unlock()
	counter++
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), counter)
}

// New creates and migrates a schema, registering its removal with t.Cleanup.
func New(t *testing.T) *TestDB {
	t.Helper()

	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skipf("%s not set, skipping PostgreSQL test", EnvURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	schema := uniqueSchema()

	admin, err := db.NewPool(ctx, url, "", 2, 0)
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}

	if _, err := db.NewMigrator(admin, migrations.FS).Up(ctx, schema); err != nil {
		admin.Close()
		t.Fatalf("migrate schema %s: %v", schema, err)
	}

	pool, err := db.NewPool(ctx, url, schema, 4, 0)
	if err != nil {
		admin.Close()
		t.Fatalf("connect schema %s: %v", schema, err)
	}

	t.Cleanup(func() {
		pool.Close()
		dropCtx, dropCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer dropCancel()
		if _, err := admin.Exec(dropCtx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema)); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
		admin.Close()
	})

	return &TestDB{Pool: pool, Schema: schema}
}
