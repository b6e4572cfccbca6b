// Package cache is the process-local persistence layer. It holds the small
// set of values that must survive between remote reads within a session,
// currently the currency preference.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/momentfin/ledgersync/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS preferences (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const keyCurrency = "currency"

type Cache struct {
	db *sql.DB
}

// Open creates or opens the cache database. ":memory:" works for tests.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("cache.Open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache.Open: ping: %w", err)
	}

	// Single writer; sqlite serializes writes anyway and this avoids
	// SQLITE_BUSY under concurrent preference saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache.Open: pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache.Open: schema: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Currency returns the cached currency code, or domain.ErrNotFound when the
// cache is cold.
func (c *Cache) Currency(ctx context.Context) (string, error) {
	var value string
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE key = ?`, keyCurrency,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("Currency: %w", domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("Currency: %w", err)
	}
	return value, nil
}

func (c *Cache) PutCurrency(ctx context.Context, code string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		keyCurrency, code,
	)
	if err != nil {
		return fmt.Errorf("PutCurrency: %w", err)
	}
	return nil
}
