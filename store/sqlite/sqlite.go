/*
Package sqlite provides a SQLite-backed implementation of mirror.LineStore.

PURPOSE:
  Persists the reference data the schedule engine reads on every call:
  shift codes, biddable lines, holidays and the bid-period settings.
  Nothing computed by the engine is stored; expansions, statistics and
  comparisons are always recomputed from these rows.

INTERFACES IMPLEMENTED:
  mirror.LineStore: Lines, shift codes, holidays, schedule parameters

KEY TABLES:
  shift_codes: Code table (begin/end as HH:MM, length as decimal text)
  lines:       Biddable lines, pattern stored as a JSON array of codes
  holidays:    Holiday calendar, one row per date
  settings:    Key/value system settings (start_date, num_cycles)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Reads from the mirror worker pool
  take the read lock only.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers never block
  each other.

USAGE:
  store, err := sqlite.New("./data/mirror.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := mirror.NewService(store, logger)

SEE ALSO:
  - mirror/types.go: LineStore interface
  - mirror/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/mirror-engine/cycle"
	"github.com/warp/mirror-engine/mirror"
)

var (
	// ErrHolidayNotFound is returned when deleting an unknown holiday.
	ErrHolidayNotFound = errors.New("holiday not found")

	// ErrDuplicateLineNumber is returned when two lines share a number.
	ErrDuplicateLineNumber = errors.New("line number already in use")

	// ErrDuplicateHoliday is returned when a date already has a holiday.
	ErrDuplicateHoliday = errors.New("holiday already exists for date")
)

const (
	settingStartDate = "start_date"
	settingNumCycles = "num_cycles"
)

// Store implements mirror.LineStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ mirror.LineStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Shift code reference table
	CREATE TABLE IF NOT EXISTS shift_codes (
		code TEXT PRIMARY KEY,
		begin_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		category TEXT NOT NULL,
		length_hours TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shift_codes_category
		ON shift_codes(category);

	-- Biddable lines
	CREATE TABLE IF NOT EXISTS lines (
		id TEXT PRIMARY KEY,
		number INTEGER NOT NULL UNIQUE,
		name TEXT NOT NULL,
		operation TEXT,
		pattern_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Holiday calendar
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_date
		ON holidays(date);

	-- System settings (bid period)
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SHIFT CODES
// =============================================================================

// SaveShiftCode inserts or replaces a shift code definition.
func (s *Store) SaveShiftCode(ctx context.Context, d cycle.ShiftCodeDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO shift_codes (code, begin_time, end_time, category, length_hours, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			begin_time = excluded.begin_time,
			end_time = excluded.end_time,
			category = excluded.category,
			length_hours = excluded.length_hours,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		d.Code, d.Begin.String(), d.End.String(), string(d.Category),
		d.LengthHours.String(), now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save shift code %s: %w", d.Code, err)
	}
	return nil
}

// ListShiftCodes returns all shift codes ordered by code.
func (s *Store) ListShiftCodes(ctx context.Context) ([]cycle.ShiftCodeDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT code, begin_time, end_time, category, length_hours FROM shift_codes ORDER BY code",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift codes: %w", err)
	}
	defer rows.Close()

	var defs []cycle.ShiftCodeDefinition
	for rows.Next() {
		d, err := scanShiftCode(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

func scanShiftCode(rows *sql.Rows) (cycle.ShiftCodeDefinition, error) {
	var (
		d                  cycle.ShiftCodeDefinition
		begin, end, length string
		category           string
	)
	if err := rows.Scan(&d.Code, &begin, &end, &category, &length); err != nil {
		return d, fmt.Errorf("failed to scan shift code: %w", err)
	}

	var err error
	if d.Begin, err = cycle.ParseLocalTime(begin); err != nil {
		return d, fmt.Errorf("shift code %s: %w", d.Code, err)
	}
	if d.End, err = cycle.ParseLocalTime(end); err != nil {
		return d, fmt.Errorf("shift code %s: %w", d.Code, err)
	}
	cat, ok := cycle.ParseCategory(category)
	if !ok {
		return d, fmt.Errorf("shift code %s: unknown category %q", d.Code, category)
	}
	d.Category = cat
	if d.LengthHours, err = decimal.NewFromString(length); err != nil {
		return d, fmt.Errorf("shift code %s: %w", d.Code, err)
	}
	return d, nil
}

// =============================================================================
// LINES (mirror.LineStore)
// =============================================================================

// SaveLine inserts or replaces a line.
func (s *Store) SaveLine(ctx context.Context, l mirror.Line) error {
	if err := l.Pattern.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	patternJSON, err := json.Marshal(l.Pattern.Codes)
	if err != nil {
		return fmt.Errorf("failed to encode pattern: %w", err)
	}

	query := `
		INSERT INTO lines (id, number, name, operation, pattern_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			number = excluded.number,
			name = excluded.name,
			operation = excluded.operation,
			pattern_json = excluded.pattern_json,
			updated_at = excluded.updated_at
	`

	ts := now()
	_, err = s.db.ExecContext(ctx, query,
		l.ID, l.Number, l.Name, nullString(l.Operation), string(patternJSON), ts, ts,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateLineNumber
		}
		return fmt.Errorf("failed to save line: %w", err)
	}
	return nil
}

// GetLine retrieves a line by ID.
func (s *Store) GetLine(ctx context.Context, id string) (*mirror.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		l           mirror.Line
		operation   sql.NullString
		patternJSON string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, number, name, operation, pattern_json FROM lines WHERE id = ?",
		id,
	).Scan(&l.ID, &l.Number, &l.Name, &operation, &patternJSON)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, mirror.ErrLineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get line: %w", err)
	}

	l.Operation = operation.String
	if l.Pattern, err = decodePattern(patternJSON); err != nil {
		return nil, fmt.Errorf("line %s: %w", id, err)
	}
	return &l, nil
}

// ListLines returns all lines ordered by number.
func (s *Store) ListLines(ctx context.Context) ([]mirror.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, number, name, operation, pattern_json FROM lines ORDER BY number",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()

	var lines []mirror.Line
	for rows.Next() {
		var (
			l           mirror.Line
			operation   sql.NullString
			patternJSON string
		)
		if err := rows.Scan(&l.ID, &l.Number, &l.Name, &operation, &patternJSON); err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		l.Operation = operation.String
		if l.Pattern, err = decodePattern(patternJSON); err != nil {
			return nil, fmt.Errorf("line %s: %w", l.ID, err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// DeleteLine removes a line.
func (s *Store) DeleteLine(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM lines WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mirror.ErrLineNotFound
	}
	return nil
}

func decodePattern(s string) (cycle.CyclicPattern, error) {
	var codes []string
	if err := json.Unmarshal([]byte(s), &codes); err != nil {
		return cycle.CyclicPattern{}, fmt.Errorf("failed to decode pattern: %w", err)
	}
	return cycle.NewPattern(codes...), nil
}

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// SaveHoliday saves a holiday. A date carries at most one holiday.
func (s *Store) SaveHoliday(ctx context.Context, h cycle.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (id, date, name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			name = excluded.name
	`

	_, err := s.db.ExecContext(ctx, query, h.ID, h.Date.String(), h.Name, now())
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateHoliday
		}
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHolidayNotFound
	}
	return nil
}

// ListHolidays returns holidays dated within [from, to], oldest first.
func (s *Store) ListHolidays(ctx context.Context, from, to cycle.CalendarDate) ([]cycle.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// DateOnly strings sort chronologically.
	return s.queryHolidays(ctx,
		"SELECT id, date, name FROM holidays WHERE date >= ? AND date <= ? ORDER BY date ASC",
		from.String(), to.String(),
	)
}

// GetAllHolidays returns every holiday (for admin UI).
func (s *Store) GetAllHolidays(ctx context.Context) ([]cycle.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryHolidays(ctx, "SELECT id, date, name FROM holidays ORDER BY date ASC")
}

func (s *Store) queryHolidays(ctx context.Context, query string, args ...any) ([]cycle.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []cycle.Holiday
	for rows.Next() {
		var h cycle.Holiday
		var dateStr string
		if err := rows.Scan(&h.ID, &dateStr, &h.Name); err != nil {
			return nil, err
		}
		if h.Date, err = cycle.ParseDate(dateStr); err != nil {
			return nil, fmt.Errorf("holiday %s: %w", h.ID, err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// SETTINGS (bid period)
// =============================================================================

// SaveParameters persists the schedule parameters.
func (s *Store) SaveParameters(ctx context.Context, p cycle.ScheduleParameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.NumCycles < 0 {
		return fmt.Errorf("%w: num_cycles must not be negative", cycle.ErrInvalidParameters)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	ts := now()
	for key, value := range map[string]string{
		settingStartDate: p.StartDate.String(),
		settingNumCycles: strconv.Itoa(p.NumCycles),
	} {
		if _, err := tx.ExecContext(ctx, query, key, value, ts); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// GetParameters returns the stored schedule parameters. Before any have
// been saved it returns the zero value, which the expander rejects.
func (s *Store) GetParameters(ctx context.Context) (cycle.ScheduleParameters, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p cycle.ScheduleParameters
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, value FROM settings WHERE key IN (?, ?)",
		settingStartDate, settingNumCycles,
	)
	if err != nil {
		return p, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return p, err
		}
		switch key {
		case settingStartDate:
			if p.StartDate, err = cycle.ParseDate(value); err != nil {
				return p, fmt.Errorf("setting %s: %w", key, err)
			}
		case settingNumCycles:
			if p.NumCycles, err = strconv.Atoi(value); err != nil {
				return p, fmt.Errorf("setting %s: %w", key, err)
			}
		}
	}
	return p, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"lines", "holidays", "shift_codes", "settings"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
