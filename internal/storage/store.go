// Package storage persists the books in SQLite and wraps every multi-row
// mutation in a transaction so a reader never observes a payment without its
// bill update.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and runs
// migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Ping reports whether the database is reachable, for readiness probes.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// scanTime tolerates both RFC3339 strings and the driver's native time.
type scanTime struct {
	Time time.Time
}

func (st *scanTime) Scan(v any) error {
	switch t := v.(type) {
	case time.Time:
		st.Time = t
		return nil
	case string:
		parsed, err := time.Parse("2006-01-02 15:04:05", t)
		if err != nil {
			parsed, err = time.Parse(time.RFC3339, t)
		}
		if err != nil {
			return fmt.Errorf("scan timestamp %q: %w", t, err)
		}
		st.Time = parsed
		return nil
	case nil:
		st.Time = time.Time{}
		return nil
	}
	return fmt.Errorf("unsupported timestamp type %T", v)
}
