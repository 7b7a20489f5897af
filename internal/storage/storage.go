package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-manual/internal/logging"
	"github.com/goliatone/go-manual/internal/runtimeconfig"
	"github.com/goliatone/go-manual/pkg/interfaces"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var (
	ErrMemoryDriver = errors.New("storage: memory driver has no database")
	ErrDSNRequired  = errors.New("storage: dsn required")
)

// Open connects to the database described by cfg and verifies the
// connection.
func Open(ctx context.Context, cfg runtimeconfig.StorageConfig, logger interfaces.Logger) (*bun.DB, error) {
	driver := runtimeconfig.NormalizeDriver(cfg.Driver)
	if driver == runtimeconfig.DriverMemory {
		return nil, ErrMemoryDriver
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, ErrDSNRequired
	}

	var db *bun.DB
	switch driver {
	case runtimeconfig.DriverSQLite:
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("storage: open sqlite: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		db = bun.NewDB(sqlDB, sqlitedialect.New())
	case runtimeconfig.DriverPostgres:
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("storage: open postgres: %w", err)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", cfg.Driver)
	}

	if cfg.Debug {
		db.AddQueryHook(NewQueryLogger(logger))
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", driver, err)
	}
	return db, nil
}

// QueryLogger logs every query at debug level.
type QueryLogger struct {
	logger interfaces.Logger
}

var _ bun.QueryHook = (*QueryLogger)(nil)

// NewQueryLogger builds a query hook writing to logger.
func NewQueryLogger(logger interfaces.Logger) *QueryLogger {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &QueryLogger{logger: logger}
}

func (h *QueryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	args := []any{
		"operation", event.Operation(),
		"query", event.Query,
		"duration_ms", time.Since(event.StartTime).Milliseconds(),
	}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		h.logger.Warn("storage.query.failed", append(args, "error", event.Err)...)
		return
	}
	h.logger.Debug("storage.query", args...)
}
