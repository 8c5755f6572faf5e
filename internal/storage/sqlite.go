package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/username/workday-calendar/internal/calendar"
	"github.com/username/workday-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS holiday_type (
	short_name TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS holiday (
	date TEXT PRIMARY KEY,
	holiday_type TEXT NOT NULL,
	fiscal_year INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (holiday_type) REFERENCES holiday_type(short_name)
);

CREATE INDEX IF NOT EXISTS idx_holiday_fiscal_year ON holiday(fiscal_year);
`

const selectHolidays = `
SELECT h.date, h.holiday_type, COALESCE(t.name, ''), h.fiscal_year
FROM holiday h
LEFT JOIN holiday_type t ON t.short_name = h.holiday_type`

// SQLiteStore persists holidays and holiday types in SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLiteStore
func NewSQLiteStore(db *sql.DB, logger *zap.Logger) *SQLiteStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStore{db: db, logger: logger}
}

// Migrate creates the schema if it does not exist
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveType inserts or renames a holiday type
func (s *SQLiteStore) SaveType(ctx context.Context, t calendar.HolidayType) error {
	name := t.Name
	if name == "" {
		name = t.ShortName
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO holiday_type (short_name, name) VALUES (?, ?) ON CONFLICT(short_name) DO UPDATE SET name=excluded.name",
		t.ShortName, name,
	)
	if err != nil {
		return fmt.Errorf("failed to save holiday type %s: %w", t.ShortName, err)
	}
	return nil
}

// Save upserts a holiday by date. Unknown holiday types are created on the fly.
func (s *SQLiteStore) Save(ctx context.Context, h calendar.Holiday) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	name := h.Type.Name
	if name == "" {
		name = h.Type.ShortName
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO holiday_type (short_name, name) VALUES (?, ?) ON CONFLICT(short_name) DO NOTHING",
		h.Type.ShortName, name,
	); err != nil {
		return fmt.Errorf("failed to save holiday type %s: %w", h.Type.ShortName, err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO holiday (date, holiday_type, fiscal_year) VALUES (?, ?, ?) ON CONFLICT(date) DO UPDATE SET holiday_type=excluded.holiday_type, fiscal_year=excluded.fiscal_year",
		formatDate(h.Date), h.Type.ShortName, h.FiscalYear,
	); err != nil {
		return fmt.Errorf("failed to save holiday %s: %w", h.Date, err)
	}

	return tx.Commit()
}

// Get returns the holiday stored for a date
func (s *SQLiteStore) Get(ctx context.Context, date civil.Date) (calendar.Holiday, bool, error) {
	row := s.db.QueryRowContext(ctx, selectHolidays+" WHERE h.date = ?", formatDate(date))

	h, err := scanHoliday(row)
	if errors.Is(err, sql.ErrNoRows) {
		return calendar.Holiday{}, false, nil
	}
	if err != nil {
		return calendar.Holiday{}, false, err
	}
	return h, true, nil
}

// List returns all holidays ordered by date
func (s *SQLiteStore) List(ctx context.Context) ([]calendar.Holiday, error) {
	return s.query(ctx, selectHolidays+" ORDER BY h.date")
}

// ListRange returns holidays with lo <= date <= hi ordered by date
func (s *SQLiteStore) ListRange(ctx context.Context, lo, hi civil.Date) ([]calendar.Holiday, error) {
	return s.query(ctx, selectHolidays+" WHERE h.date BETWEEN ? AND ? ORDER BY h.date",
		formatDate(lo), formatDate(hi))
}

// Load implements Source
func (s *SQLiteStore) Load(ctx context.Context) ([]calendar.Holiday, error) {
	holidays, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Holidays loaded from database", zap.Int("holidays", len(holidays)))
	return holidays, nil
}

// ListTypes returns all holiday types ordered by short name
func (s *SQLiteStore) ListTypes(ctx context.Context) ([]calendar.HolidayType, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT short_name, name FROM holiday_type ORDER BY short_name")
	if err != nil {
		return nil, fmt.Errorf("failed to query holiday types: %w", err)
	}
	defer rows.Close()

	var types []calendar.HolidayType
	for rows.Next() {
		var t calendar.HolidayType
		if err := rows.Scan(&t.ShortName, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan holiday type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// EarliestDate returns the first holiday date
func (s *SQLiteStore) EarliestDate(ctx context.Context) (civil.Date, error) {
	return s.boundDate(ctx, "SELECT MIN(date) FROM holiday")
}

// LatestDate returns the last holiday date
func (s *SQLiteStore) LatestDate(ctx context.Context) (civil.Date, error) {
	return s.boundDate(ctx, "SELECT MAX(date) FROM holiday")
}

// CountInRange counts holidays with lo <= date <= hi
func (s *SQLiteStore) CountInRange(ctx context.Context, lo, hi civil.Date) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM holiday WHERE date BETWEEN ? AND ?",
		formatDate(lo), formatDate(hi),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count holidays: %w", err)
	}
	return count, nil
}

// UpdateFiscalYears fills in the fiscal year of every holiday that has none
// and returns the number of rows updated
func (s *SQLiteStore) UpdateFiscalYears(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT date FROM holiday WHERE fiscal_year = 0 ORDER BY date")
	if err != nil {
		return 0, fmt.Errorf("failed to query holidays without fiscal year: %w", err)
	}

	var dates []civil.Date
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan holiday date: %w", err)
		}
		date, err := parseDate(raw)
		if err != nil {
			rows.Close()
			return 0, err
		}
		dates = append(dates, date)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	if len(dates) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, date := range dates {
		fy := calendar.FiscalYearFor(date).Year
		if _, err := tx.ExecContext(ctx,
			"UPDATE holiday SET fiscal_year = ? WHERE date = ?", fy, formatDate(date),
		); err != nil {
			return 0, fmt.Errorf("failed to update fiscal year for %s: %w", date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit fiscal years: %w", err)
	}

	s.logger.Info("Fiscal years updated", zap.Int("holidays", len(dates)))
	return len(dates), nil
}

func (s *SQLiteStore) boundDate(ctx context.Context, query string) (civil.Date, error) {
	var raw sql.NullString
	if err := s.db.QueryRowContext(ctx, query).Scan(&raw); err != nil {
		return civil.Date{}, fmt.Errorf("failed to query holiday bounds: %w", err)
	}
	if !raw.Valid {
		return civil.Date{}, calendar.ErrEmptyRegistry
	}
	return parseDate(raw.String)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]calendar.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []calendar.Holiday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHoliday(row scanner) (calendar.Holiday, error) {
	var h calendar.Holiday
	var raw string
	if err := row.Scan(&raw, &h.Type.ShortName, &h.Type.Name, &h.FiscalYear); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return h, err
		}
		return h, fmt.Errorf("failed to scan holiday: %w", err)
	}

	date, err := parseDate(raw)
	if err != nil {
		return h, err
	}
	h.Date = date
	return h, nil
}

func formatDate(d civil.Date) string {
	return dateutil.Format(dateutil.DefaultLayout, d)
}

func parseDate(raw string) (civil.Date, error) {
	date, err := dateutil.Parse(dateutil.DefaultLayout, raw)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid stored holiday date %q: %w", raw, err)
	}
	return date, nil
}
