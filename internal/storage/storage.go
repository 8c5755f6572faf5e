package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/username/workday-calendar/internal/calendar"

	_ "modernc.org/sqlite"
)

// Source provides the holidays a registry is built from
type Source interface {
	Load(ctx context.Context) ([]calendar.Holiday, error)
}

// OpenSQLite opens a SQLite database for the given DSN.
// A single connection is used so in-memory databases and pragmas stay consistent.
func OpenSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// LoadRegistry loads holidays from the source and builds a registry from them
func LoadRegistry(ctx context.Context, source Source) (*calendar.Registry, error) {
	holidays, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}

	registry, err := calendar.NewRegistry(holidays)
	if err != nil {
		return nil, fmt.Errorf("failed to build holiday registry: %w", err)
	}
	return registry, nil
}
