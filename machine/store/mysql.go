package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/statewalk/statewalk/machine"
)

// MySQLStore persists run records in MySQL/MariaDB.
//
// Use it when run history must be shared across machines: a CI fleet
// recording scenario outcomes centrally, or dashboards reading failure
// trends. Connection pooling and transactional writes come from
// database/sql.
type MySQLStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewMySQLStore opens a pooled connection for the given DSN and migrates
// the schema. DSN format:
//
//	[username[:password]@][protocol[(address)]]/dbname[?param1=value1&...]
//
// Never hardcode credentials; read the DSN from the environment:
//
//	store, err := store.NewMySQLStore(os.Getenv("MYSQL_DSN"))
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	s := &MySQLStore{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *MySQLStore) createTables(ctx context.Context) error {
	recordsTable := `
		CREATE TABLE IF NOT EXISTS run_records (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id VARCHAR(255) NOT NULL,
			scenario INT NOT NULL,
			checkpoint INT NOT NULL,
			element INT NOT NULL,
			kind VARCHAR(32) NOT NULL,
			ok TINYINT(1) NOT NULL,
			detail TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_run_records_run_id (run_id)
		)
	`
	if _, err := s.db.ExecContext(ctx, recordsTable); err != nil {
		return fmt.Errorf("failed to create run_records table: %w", err)
	}

	runsTable := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id VARCHAR(255) PRIMARY KEY,
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
func (s *MySQLStore) SaveRun(ctx context.Context, runID string, records []machine.Record) error {
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
		"INSERT INTO runs (run_id) VALUES (?) ON DUPLICATE KEY UPDATE created_at = CURRENT_TIMESTAMP",
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
func (s *MySQLStore) LoadRun(ctx context.Context, runID string) ([]machine.Record, error) {
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
func (s *MySQLStore) ListRuns(ctx context.Context) ([]string, error) {
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

// Close closes the connection pool.
func (s *MySQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
