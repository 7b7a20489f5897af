package testsupport

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// NewSQLiteMemoryDB opens a private in-memory sqlite database.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	return sql.Open("sqlite3", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
}

// NewBunDB opens an in-memory sqlite database wrapped in bun, runs setup on
// it and closes it when the test ends.
func NewBunDB(t testing.TB, setup func(ctx context.Context, db bun.IDB) error) *bun.DB {
	t.Helper()

	sqlDB, err := NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)

	if setup != nil {
		if err := setup(context.Background(), db); err != nil {
			t.Fatalf("setup db: %v", err)
		}
	}
	return db
}

// SequentialUUIDs returns a generator that yields values in order and then
// falls back to random ids.
func SequentialUUIDs(values ...string) func() uuid.UUID {
	ids := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		ids = append(ids, uuid.MustParse(value))
	}
	next := 0
	return func() uuid.UUID {
		if next < len(ids) {
			id := ids[next]
			next++
			return id
		}
		return uuid.New()
	}
}
