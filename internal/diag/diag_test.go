package diag

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"chronicle/internal/logging"
)

func TestRecorderCounters(t *testing.T) {
	rec := NewRecorder(logging.NewNop(), nil)

	rec.Record(CounterFileSinkError, "file sink write failed")
	rec.Record(CounterFileSinkError, "file sink write failed")
	rec.Record(CounterSiemSpooled, "delivery exhausted; entry spooled")

	if got := rec.Count(CounterFileSinkError); got != 2 {
		t.Errorf("file sink counter = %d, want 2", got)
	}
	if got := rec.Count(CounterSiemSpooled); got != 1 {
		t.Errorf("siem spooled counter = %d, want 1", got)
	}
	if got := rec.Count(CounterFallback); got != 0 {
		t.Errorf("untouched counter = %d, want 0", got)
	}

	snapshot := rec.Counters()
	if len(snapshot) != 2 {
		t.Fatalf("snapshot = %v", snapshot)
	}
	// Sorted by name.
	if snapshot[0].Name != CounterFileSinkError || snapshot[1].Name != CounterSiemSpooled {
		t.Errorf("snapshot order = %v", snapshot)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.Record(CounterFallback, "should not panic")
	if rec.Count(CounterFallback) != 0 {
		t.Error("nil recorder should report zero")
	}
	if rec.Counters() != nil {
		t.Error("nil recorder should report no counters")
	}
}

func TestStoreRecordAndRecent(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "diagnostics.db"), 100)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := store.Record(ctx, CounterSpoolError, "spool write failed", fmt.Sprintf("detail-%d", i)); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	events, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	// Newest first.
	if events[0].Detail != "detail-2" || events[2].Detail != "detail-0" {
		t.Errorf("events out of order: %+v", events)
	}
	if events[0].Counter != CounterSpoolError {
		t.Errorf("counter = %q", events[0].Counter)
	}
	if events[0].At.IsZero() {
		t.Error("timestamp should parse")
	}
}

func TestStorePrunesBeyondCap(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "diagnostics.db"), 5)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 12; i++ {
		if err := store.Record(ctx, CounterFallback, "fallback", fmt.Sprintf("detail-%d", i)); err != nil {
			t.Fatal(err)
		}
	}

	events, err := store.Recent(ctx, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 5 {
		t.Fatalf("expected cap of 5 rows, got %d", len(events))
	}
	if events[0].Detail != "detail-11" {
		t.Errorf("newest row = %q", events[0].Detail)
	}
	if events[4].Detail != "detail-7" {
		t.Errorf("oldest surviving row = %q", events[4].Detail)
	}
}

func TestRecorderWithStore(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "diagnostics.db"), 100)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	rec := NewRecorder(logging.NewNop(), store)
	rec.Record(CounterEventUnavailable, "os journal unavailable",
		logging.String("error", "no socket"))

	events, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("expected journal row, got %d", len(events))
	}
	if events[0].Counter != CounterEventUnavailable {
		t.Errorf("counter = %q", events[0].Counter)
	}
	if events[0].Detail != "no socket" {
		t.Errorf("detail = %q", events[0].Detail)
	}
}

func TestNilStoreIsSafe(t *testing.T) {
	var store *Store
	if err := store.Record(context.Background(), CounterFallback, "r", "d"); err != nil {
		t.Errorf("nil store record: %v", err)
	}
	events, err := store.Recent(context.Background(), 10)
	if err != nil || events != nil {
		t.Errorf("nil store recent = %v, %v", events, err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("nil store close: %v", err)
	}
	if store.Path() != "" {
		t.Error("nil store path should be empty")
	}
}
