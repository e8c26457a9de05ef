package store

import (
	"context"
	"errors"
	"testing"

	"github.com/statewalk/statewalk/machine"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	if err := s.SaveRun(ctx, "run-1", sampleRecords()); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := s.LoadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	want := sampleRecords()
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSQLiteStore_EmptyRunIsLoadable(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	// A run where every scenario guard-aborted produces no records but
	// still happened.
	if err := s.SaveRun(ctx, "run-empty", nil); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	got, err := s.LoadRun(ctx, "run-empty")
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records, want 0", len(got))
	}
}

func TestSQLiteStore_LoadUnknownRun(t *testing.T) {
	s := newTestSQLiteStore(t)
	if _, err := s.LoadRun(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_SaveReplacesPreviousRecords(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	if err := s.SaveRun(ctx, "run-1", sampleRecords()); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	replacement := []machine.Record{{Scenario: 2, Checkpoint: 3, Kind: machine.KindAssertion, OK: true}}
	if err := s.SaveRun(ctx, "run-1", replacement); err != nil {
		t.Fatalf("second SaveRun failed: %v", err)
	}

	got, err := s.LoadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if len(got) != 1 || got[0] != replacement[0] {
		t.Errorf("got %+v after replace, want %+v", got, replacement)
	}
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	for _, id := range []string{"run-1", "run-2"} {
		if err := s.SaveRun(ctx, id, sampleRecords()); err != nil {
			t.Fatalf("SaveRun(%s) failed: %v", id, err)
		}
	}

	ids, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d run IDs, want 2", len(ids))
	}
	seen := map[string]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen["run-1"] || !seen["run-2"] {
		t.Errorf("listing missing runs: %v", ids)
	}
}

func TestSQLiteStore_ClosedStoreRejectsWrites(t *testing.T) {
	s := newTestSQLiteStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.SaveRun(context.Background(), "run-1", sampleRecords()); err == nil {
		t.Error("SaveRun on closed store should fail")
	}
}
