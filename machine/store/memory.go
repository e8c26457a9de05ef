package store

import (
	"context"
	"sync"

	"github.com/statewalk/statewalk/machine"
)

// MemStore is an in-memory Store for tests and short-lived processes.
// Data is lost when the process exits. Thread-safe.
type MemStore struct {
	mu    sync.RWMutex
	runs  map[string][]machine.Record
	order []string // run IDs, oldest first
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{runs: make(map[string][]machine.Record)}
}

// SaveRun stores a copy of the records under runID.
func (m *MemStore) SaveRun(_ context.Context, runID string, records []machine.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.runs[runID]; !exists {
		m.order = append(m.order, runID)
	}
	m.runs[runID] = append([]machine.Record(nil), records...)
	return nil
}

// LoadRun returns a copy of the run's records.
func (m *MemStore) LoadRun(_ context.Context, runID string) ([]machine.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records, ok := m.runs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]machine.Record(nil), records...), nil
}

// ListRuns returns all run IDs, most recent first.
func (m *MemStore) ListRuns(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, len(m.order))
	for i, id := range m.order {
		ids[len(m.order)-1-i] = id
	}
	return ids, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
