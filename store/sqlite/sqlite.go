/*
Package sqlite provides SQLite-backed persistence for the roster and the
payroll ledger.

PURPOSE:
  Keeps two things across restarts:
  - The roster: collaborators and reporting lines of the one Company the
    server manages. Saved as a whole after every successful mutation.
  - Payroll runs: an append-only history (implements payroll.Store).

KEY TABLES:
  collaborators:   One row per collaborator, position = hire order
  reporting_lines: subordinate_id -> chief_id, position = link order
  payroll_runs:    Run headers, idempotency_key UNIQUE
  payroll_lines:   One row per collaborator per run

  payroll_lines deliberately has no foreign key to collaborators: a run
  keeps naming people who were fired later.

APPEND-ONLY ENFORCEMENT:
  No UPDATE or DELETE statement touches payroll_runs or payroll_lines,
  except Reset and ReplaceAll.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, in addition to SQLite's own locking.

WAL MODE:
  Opened with WAL journaling and foreign keys on. ":memory:" databases are
  pinned to one connection so every query sees the same database.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  co, err := store.LoadRoster(ctx)
  ledger := payroll.NewLedger(store)

SEE ALSO:
  - payroll/ledger.go: Store interface
  - payroll/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/staff"
)

// Store implements roster persistence and payroll.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ payroll.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
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
	-- Roster
	CREATE TABLE IF NOT EXISTS collaborators (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		hire_time INTEGER NOT NULL,
		base_rate TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reporting_lines (
		subordinate_id TEXT PRIMARY KEY REFERENCES collaborators(id) ON DELETE CASCADE,
		chief_id TEXT NOT NULL REFERENCES collaborators(id) ON DELETE CASCADE,
		position INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reporting_lines_chief
		ON reporting_lines(chief_id, position);

	-- Payroll runs (append-only)
	CREATE TABLE IF NOT EXISTS payroll_runs (
		id TEXT PRIMARY KEY,
		idempotency_key TEXT UNIQUE,
		as_of INTEGER NOT NULL,
		total TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payroll_runs_created
		ON payroll_runs(created_at);

	CREATE TABLE IF NOT EXISTS payroll_lines (
		run_id TEXT NOT NULL REFERENCES payroll_runs(id),
		line_no INTEGER NOT NULL,
		collaborator_id TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		work_years INTEGER NOT NULL,
		salary TEXT NOT NULL,
		PRIMARY KEY (run_id, line_no)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ROSTER
// =============================================================================

// SaveRoster replaces the stored roster with co, atomically.
func (s *Store) SaveRoster(ctx context.Context, co *staff.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := clearTables(ctx, sqlTx, "reporting_lines", "collaborators"); err != nil {
		return err
	}
	if err := saveRoster(ctx, sqlTx, co); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// ReplaceAll drops the roster and the whole payroll history and stores co
// and runs in their place, in one transaction.
func (s *Store) ReplaceAll(ctx context.Context, co *staff.Company, runs []payroll.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := clearTables(ctx, sqlTx, allTables...); err != nil {
		return err
	}
	if err := saveRoster(ctx, sqlTx, co); err != nil {
		return err
	}
	for _, run := range runs {
		if err := appendRun(ctx, sqlTx, run); err != nil {
			return err
		}
	}
	return sqlTx.Commit()
}

func saveRoster(ctx context.Context, sqlTx *sql.Tx, co *staff.Company) error {
	collaborators := co.Collaborators()
	for i, c := range collaborators {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO collaborators (id, position, name, role, hire_time, base_rate)
			VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID().String(), i, c.Name(), string(c.Role()), int64(c.HireTime()), c.BaseRate().String(),
		)
		if err != nil {
			return fmt.Errorf("failed to save collaborator %s: %w", c.ID(), err)
		}
	}

	for _, c := range collaborators {
		for i, sub := range c.Subordinates() {
			_, err := sqlTx.ExecContext(ctx, `
				INSERT INTO reporting_lines (subordinate_id, chief_id, position)
				VALUES (?, ?, ?)`,
				sub.ID().String(), c.ID().String(), i,
			)
			if err != nil {
				return fmt.Errorf("failed to save reporting line %s -> %s: %w", c.ID(), sub.ID(), err)
			}
		}
	}
	return nil
}

// LoadRoster rebuilds the stored roster. Every collaborator and line goes
// through Company.Hire and Company.AddSubordinate, so a tampered database
// cannot produce a company that breaks the hierarchy rules.
func (s *Store) LoadRoster(ctx context.Context) (*staff.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	co := staff.NewCompany()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, role, hire_time, base_rate
		FROM collaborators
		ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query collaborators: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCollaborator(rows)
		if err != nil {
			return nil, err
		}
		if err := co.Hire(c); err != nil {
			return nil, fmt.Errorf("invalid stored collaborator %s: %w", c.ID(), err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lines, err := s.db.QueryContext(ctx, `
		SELECT r.chief_id, r.subordinate_id
		FROM reporting_lines r
		JOIN collaborators c ON c.id = r.chief_id
		ORDER BY c.position ASC, r.position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reporting lines: %w", err)
	}
	defer lines.Close()

	for lines.Next() {
		var chiefID, subID string
		if err := lines.Scan(&chiefID, &subID); err != nil {
			return nil, err
		}
		chief, sub, err := lookupPair(co, chiefID, subID)
		if err != nil {
			return nil, err
		}
		if err := co.AddSubordinate(chief, sub); err != nil {
			return nil, fmt.Errorf("invalid stored reporting line %s -> %s: %w", chiefID, subID, err)
		}
	}
	return co, lines.Err()
}

func scanCollaborator(rows *sql.Rows) (*staff.Collaborator, error) {
	var (
		idStr, name, role, rate string
		hireTime                int64
	)
	if err := rows.Scan(&idStr, &name, &role, &hireTime, &rate); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid stored collaborator id %q: %w", idStr, err)
	}
	c, err := staff.NewWithID(id, staff.Role(role), name)
	if err != nil {
		return nil, fmt.Errorf("invalid stored collaborator %s: %w", idStr, err)
	}
	c.SetHireTime(staff.Timestamp(hireTime))

	baseRate, err := decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid stored base rate for %s: %w", idStr, err)
	}
	if err := c.SetBaseRate(baseRate); err != nil {
		return nil, fmt.Errorf("invalid stored base rate for %s: %w", idStr, err)
	}
	return c, nil
}

func lookupPair(co *staff.Company, chiefID, subID string) (*staff.Collaborator, *staff.Collaborator, error) {
	find := func(s string) (*staff.Collaborator, error) {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid stored collaborator id %q: %w", s, err)
		}
		c, ok := co.Collaborator(id)
		if !ok {
			return nil, fmt.Errorf("reporting line refers to missing collaborator %s", s)
		}
		return c, nil
	}

	chief, err := find(chiefID)
	if err != nil {
		return nil, nil, err
	}
	sub, err := find(subID)
	if err != nil {
		return nil, nil, err
	}
	return chief, sub, nil
}

// =============================================================================
// PAYROLL STORE (payroll.Store interface)
// =============================================================================

// Append persists a run and its lines atomically.
func (s *Store) Append(ctx context.Context, run payroll.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := appendRun(ctx, sqlTx, run); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func appendRun(ctx context.Context, sqlTx *sql.Tx, run payroll.Run) error {
	_, err := sqlTx.ExecContext(ctx, `
		INSERT INTO payroll_runs (id, idempotency_key, as_of, total, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID.String(),
		nullString(run.Key),
		int64(run.AsOf),
		run.Total.String(),
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return payroll.ErrDuplicateRun
		}
		return fmt.Errorf("failed to append payroll run: %w", err)
	}

	for i, line := range run.Lines {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO payroll_lines
			(run_id, line_no, collaborator_id, name, role, work_years, salary)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID.String(), i, line.CollaboratorID.String(), line.Name,
			string(line.Role), line.WorkYears, line.Salary.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to append payroll line: %w", err)
		}
	}
	return nil
}

// List returns every run with its lines, oldest first.
func (s *Store) List(ctx context.Context) ([]payroll.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, idempotency_key, as_of, total, created_at
		FROM payroll_runs
		ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.Run
	index := make(map[string]int)
	for rows.Next() {
		var (
			id, total, createdAt string
			key                  sql.NullString
			asOf                 int64
		)
		if err := rows.Scan(&id, &key, &asOf, &total, &createdAt); err != nil {
			return nil, err
		}
		run := payroll.Run{Key: key.String, AsOf: staff.Timestamp(asOf)}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid stored run id %q: %w", id, err)
		}
		if run.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("invalid stored total for run %s: %w", id, err)
		}
		if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("invalid stored created_at for run %s: %w", id, err)
		}
		index[id] = len(runs)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lines, err := s.db.QueryContext(ctx, `
		SELECT run_id, collaborator_id, name, role, work_years, salary
		FROM payroll_lines
		ORDER BY run_id ASC, line_no ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query payroll lines: %w", err)
	}
	defer lines.Close()

	for lines.Next() {
		var (
			runID, collaboratorID, name, role, salary string
			line                                      payroll.Line
		)
		if err := lines.Scan(&runID, &collaboratorID, &name, &role, &line.WorkYears, &salary); err != nil {
			return nil, err
		}
		i, ok := index[runID]
		if !ok {
			continue
		}
		if line.CollaboratorID, err = uuid.Parse(collaboratorID); err != nil {
			return nil, fmt.Errorf("invalid stored collaborator id %q: %w", collaboratorID, err)
		}
		if line.Salary, err = decimal.NewFromString(salary); err != nil {
			return nil, fmt.Errorf("invalid stored salary in run %s: %w", runID, err)
		}
		line.Name = name
		line.Role = staff.Role(role)
		runs[i].Lines = append(runs[i].Lines, line)
	}
	return runs, lines.Err()
}

// Exists checks whether a run with this idempotency key was recorded.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM payroll_runs WHERE idempotency_key = ?",
		key,
	).Scan(&count)

	return count > 0, err
}

// =============================================================================
// UTILITIES
// =============================================================================

// allTables lists every table, children first.
var allTables = []string{"payroll_lines", "payroll_runs", "reporting_lines", "collaborators"}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range allTables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func clearTables(ctx context.Context, sqlTx *sql.Tx, tables ...string) error {
	for _, table := range tables {
		if _, err := sqlTx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
