// Package store persists cases and their audit trail in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/credit-eval/cet-console/internal/model"
)

// ErrNotFound is returned when a case id has no row.
var ErrNotFound = errors.New("case not found")

// Store is the SQLite-backed case repository.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the database at dbPath and migrates it.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open(sqliteDriver, dbPath+sqliteParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS cases (
			id TEXT PRIMARY KEY,
			customer_name TEXT NOT NULL,
			status TEXT NOT NULL,
			assigned_to TEXT,
			loan_amount REAL NOT NULL DEFAULT 0,
			timestamp TEXT,
			details TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_status ON cases(status)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_customer ON cases(customer_name)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return s.setupAuditTables()
}

// UpsertCase inserts the case or replaces the stored copy. created_at survives
// replacement.
func (s *Store) UpsertCase(ctx context.Context, c model.Case) error {
	return upsert(ctx, s.db, c)
}

// UpsertCases writes all cases in one transaction.
func (s *Store) UpsertCases(ctx context.Context, cases []model.Case) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, c := range cases {
		if err := upsert(ctx, tx, c); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, c model.Case) error {
	if err := c.Normalize(); err != nil {
		return err
	}
	details, err := json.Marshal(c.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal details for %s: %w", c.ID, err)
	}

	now := time.Now().Unix()
	query := `INSERT INTO cases (
		id, customer_name, status, assigned_to, loan_amount, timestamp, details, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		customer_name = excluded.customer_name,
		status = excluded.status,
		assigned_to = excluded.assigned_to,
		loan_amount = excluded.loan_amount,
		timestamp = excluded.timestamp,
		details = excluded.details,
		updated_at = excluded.updated_at`

	_, err = db.ExecContext(ctx, query,
		c.ID, c.CustomerName, string(c.Status), c.AssignedTo, c.LoanAmount,
		c.Timestamp, string(details), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save case %s: %w", c.ID, err)
	}
	return nil
}

const caseColumns = `id, customer_name, status, assigned_to, loan_amount, timestamp, details`

// GetCase returns the case with the given id or ErrNotFound.
func (s *Store) GetCase(ctx context.Context, id string) (model.Case, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = ?`, strings.TrimSpace(id))
	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Case{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, err
}

// ListCases returns every case ordered by id.
func (s *Store) ListCases(ctx context.Context) ([]model.Case, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+caseColumns+` FROM cases ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cases: %w", err)
	}
	defer rows.Close()
	return scanCases(rows)
}

// ListCasesByStatus returns the cases in one workflow bucket ordered by id.
func (s *Store) ListCasesByStatus(ctx context.Context, status model.Status) ([]model.Case, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE status = ? ORDER BY id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s cases: %w", status, err)
	}
	defer rows.Close()
	return scanCases(rows)
}

// CountByStatus returns the number of cases per status. Every status is
// present in the result, zero when empty.
func (s *Store) CountByStatus(ctx context.Context) (map[model.Status]int, error) {
	counts := make(map[model.Status]int)
	for _, st := range model.Statuses() {
		counts[st] = 0
	}
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM cases GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count cases: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[model.Status(st)] = n
	}
	return counts, rows.Err()
}

// CountCases returns the total number of stored cases.
func (s *Store) CountCases(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM cases`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cases: %w", err)
	}
	return n, nil
}

// DeleteCase removes a case and its audit trail.
func (s *Store) DeleteCase(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	rollback := func(e error) error {
		_ = tx.Rollback()
		return e
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM cases WHERE id = ?`, id)
	if err != nil {
		return rollback(fmt.Errorf("delete case %s: %w", id, err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return rollback(fmt.Errorf("%w: %s", ErrNotFound, id))
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM audit_entries WHERE case_id = ?`, id); err != nil {
		return rollback(fmt.Errorf("delete audit for case %s: %w", id, err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCase(row scanner) (model.Case, error) {
	var c model.Case
	var status, details string
	var assigned, ts sql.NullString
	if err := row.Scan(&c.ID, &c.CustomerName, &status, &assigned, &c.LoanAmount, &ts, &details); err != nil {
		return model.Case{}, err
	}
	c.Status = model.Status(status)
	c.AssignedTo = assigned.String
	c.Timestamp = ts.String
	if err := json.Unmarshal([]byte(details), &c.Details); err != nil {
		return model.Case{}, fmt.Errorf("failed to decode details for %s: %w", c.ID, err)
	}
	return c, nil
}

func scanCases(rows *sql.Rows) ([]model.Case, error) {
	cases := []model.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cases: %w", err)
	}
	return cases, nil
}
