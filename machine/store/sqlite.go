package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/statewalk/statewalk/machine"
)

// SQLiteStore persists run records in a single-file SQLite database.
//
// Designed for local development and CI, where run history should survive
// the process without standing infrastructure. WAL mode keeps reads
// concurrent; writes go through one connection, which is all SQLite's
// single-writer model supports anyway.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// NewSQLiteStore opens (creating if needed) the database at path and
// migrates the schema. Use ":memory:" for an in-memory database in tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	recordsTable := `
		CREATE TABLE IF NOT EXISTS run_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			scenario INTEGER NOT NULL,
			checkpoint INTEGER NOT NULL,
			element INTEGER NOT NULL,
			kind TEXT NOT NULL,
			ok INTEGER NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := s.db.ExecContext(ctx, recordsTable); err != nil {
		return fmt.Errorf("failed to create run_records table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_run_records_run_id ON run_records(run_id)"); err != nil {
		return fmt.Errorf("failed to create idx_run_records_run_id: %w", err)
	}

	runsTable := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := s.db.ExecContext(ctx, runsTable); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	return nil
}

// SaveRun persists the records transactionally, replacing any previous
// records for the same run ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, runID string, records []machine.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (run_id) VALUES (?) ON CONFLICT(run_id) DO UPDATE SET created_at = CURRENT_TIMESTAMP",
		runID); err != nil {
		return fmt.Errorf("failed to upsert run: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM run_records WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to clear previous records: %w", err)
	}

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO run_records (run_id, scenario, checkpoint, element, kind, ok, detail) VALUES (?, ?, ?, ?, ?, ?, ?)",
			runID, rec.Scenario, rec.Checkpoint, rec.Element, string(rec.Kind), boolToInt(rec.OK), rec.Detail); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// LoadRun retrieves a run's records in insertion order.
func (s *SQLiteStore) LoadRun(ctx context.Context, runID string) ([]machine.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE run_id = ?", runID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT scenario, checkpoint, element, kind, ok, detail FROM run_records WHERE run_id = ? ORDER BY id",
		runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRecords(rows)
}

// ListRuns returns all persisted run IDs, most recent first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx, "SELECT run_id FROM runs ORDER BY created_at DESC, run_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// scanRecords folds a (scenario, checkpoint, element, kind, ok, detail) row
// set into records. Shared with the MySQL store.
func scanRecords(rows *sql.Rows) ([]machine.Record, error) {
	var records []machine.Record
	for rows.Next() {
		var rec machine.Record
		var kind string
		var ok int
		if err := rows.Scan(&rec.Scenario, &rec.Checkpoint, &rec.Element, &kind, &ok, &rec.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Kind = machine.Kind(kind)
		rec.OK = ok != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
