package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// sqliteParams are added to a sqlite DSN that carries no options of its own.
const sqliteParams = "_busy_timeout=5000&_journal_mode=WAL"

// OpenOptions controls how Open connects.
type OpenOptions struct {
	Driver   string
	DSN      string
	Attempts int
	Backoff  time.Duration
	Logger   *slog.Logger
}

// Open opens the database and waits for it to answer a ping. The server may
// start before the database does (docker compose), so pings are retried.
// The caller must have imported the driver.
func Open(ctx context.Context, opts OpenOptions) (*sql.DB, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	dsn := opts.DSN
	if opts.Driver == DriverSQLite && !strings.Contains(dsn, "?") {
		dsn += "?" + sqliteParams
	}

	db, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if opts.Driver == DriverSQLite {
		// a single writer avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	}

	for i := 0; i < attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			return db, nil
		}
		logger.Warn("waiting for db",
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", attempts),
			slog.Any("error", err))
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(opts.Backoff):
		}
	}
	_ = db.Close()
	return nil, fmt.Errorf("could not connect to db: %w", err)
}
