// Package store persists the aggregated records of finished machine runs.
//
// The in-memory Report a run returns is recomputed and replaced on the
// next run; a Store keeps run history across runs and processes. Wire one
// into a run with machine.WithStore.
package store

import (
	"context"
	"errors"

	"github.com/statewalk/statewalk/machine"
)

// ErrNotFound is returned when a requested run ID does not exist.
var ErrNotFound = errors.New("not found")

// Store persists and retrieves run records.
//
// Every implementation also satisfies machine.RunStore, which is the only
// part the scheduler touches. The read side exists for reporting tools.
type Store interface {
	// SaveRun persists a finished run's records under its run ID.
	// Saving the same run ID twice replaces the previous records.
	SaveRun(ctx context.Context, runID string, records []machine.Record) error

	// LoadRun retrieves a run's records in their persisted order.
	// Returns ErrNotFound for an unknown run ID.
	LoadRun(ctx context.Context, runID string) ([]machine.Record, error)

	// ListRuns returns all persisted run IDs, most recent first.
	ListRuns(ctx context.Context) ([]string, error)

	// Close releases the store's resources.
	Close() error
}
