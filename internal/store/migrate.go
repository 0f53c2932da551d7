package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS articles(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title VARCHAR(100) NOT NULL CHECK (length(title) BETWEEN 1 AND 100),
  intro VARCHAR(300) NOT NULL CHECK (length(intro) BETWEEN 1 AND 300),
  text TEXT NOT NULL CHECK (length(text) > 0),
  date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_articles_date ON articles(date);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS articles(
  id BIGSERIAL PRIMARY KEY,
  title VARCHAR(100) NOT NULL CHECK (char_length(title) > 0),
  intro VARCHAR(300) NOT NULL CHECK (char_length(intro) > 0),
  text TEXT NOT NULL CHECK (char_length(text) > 0),
  date TIMESTAMP NOT NULL DEFAULT (NOW() AT TIME ZONE 'utc')
);

CREATE INDEX IF NOT EXISTS idx_articles_date ON articles(date);
`

// RunMigrations creates the articles table if it does not exist yet.
// It is safe to call on every start.
func RunMigrations(ctx context.Context, s *SQLStore) error {
	schema, err := schemaFor(s.db)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create articles table: %w", err)
	}
	return nil
}

func schemaFor(db *sqlx.DB) (string, error) {
	switch db.DriverName() {
	case DriverSQLite:
		return sqliteSchema, nil
	case DriverPostgres:
		return postgresSchema, nil
	default:
		return "", fmt.Errorf("no schema for driver %q", db.DriverName())
	}
}
