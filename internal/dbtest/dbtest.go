// Package dbtest opens throwaway in-memory sqlite databases with the
// application schema and reference data loaded.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"

	"venchmarks/pkg"
)

var counter atomic.Int64

// Open returns a migrated and seeded database that is closed when t ends.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, counter.Add(1))

	db, err := pkg.Open(dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if err := pkg.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := pkg.Seed(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}
