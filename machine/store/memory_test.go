package store

import (
	"context"
	"errors"
	"testing"

	"github.com/statewalk/statewalk/machine"
)

func sampleRecords() []machine.Record {
	return []machine.Record{
		{Scenario: 0, Checkpoint: 1, Element: 2, Kind: machine.KindAssertion, OK: true},
		{Scenario: 0, Checkpoint: 2, Element: 4, Kind: machine.KindAssertion, OK: false, Detail: "title mismatch"},
		{Scenario: 1, Checkpoint: 1, Element: 1, Kind: machine.KindInteraction, OK: false, Detail: "timeout"},
	}
}

func TestMemStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	defer s.Close()

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

func TestMemStore_LoadUnknownRun(t *testing.T) {
	s := NewMemStore()
	if _, err := s.LoadRun(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemStore_SaveReplacesPreviousRecords(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	if err := s.SaveRun(ctx, "run-1", sampleRecords()); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	replacement := []machine.Record{{Scenario: 0, Checkpoint: 1, Kind: machine.KindAssertion, OK: true}}
	if err := s.SaveRun(ctx, "run-1", replacement); err != nil {
		t.Fatalf("second SaveRun failed: %v", err)
	}

	got, err := s.LoadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d records after replace, want 1", len(got))
	}

	ids, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("re-save duplicated run ID in listing: %v", ids)
	}
}

func TestMemStore_ListRunsMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	for _, id := range []string{"run-1", "run-2", "run-3"} {
		if err := s.SaveRun(ctx, id, sampleRecords()); err != nil {
			t.Fatalf("SaveRun(%s) failed: %v", id, err)
		}
	}

	ids, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	want := []string{"run-3", "run-2", "run-1"}
	if len(ids) != len(want) {
		t.Fatalf("got %d run IDs, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
}

func TestMemStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	if err := s.SaveRun(ctx, "run-1", sampleRecords()); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	got, _ := s.LoadRun(ctx, "run-1")
	got[0].Detail = "mutated"

	fresh, _ := s.LoadRun(ctx, "run-1")
	if fresh[0].Detail == "mutated" {
		t.Error("LoadRun returned a view into internal storage")
	}
}
