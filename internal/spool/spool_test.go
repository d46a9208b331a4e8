package spool

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"chronicle/internal/entry"
)

var namePattern = regexp.MustCompile(`^\d{14}_[0-9a-f]{8}\.json$`)

func spoolEntry(msg string) *entry.Entry {
	return &entry.Entry{
		Timestamp:     time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		Level:         entry.LevelError,
		Message:       msg,
		Machine:       "host-1",
		ProcessID:     7,
		ProcessName:   "chronicle",
		User:          "svc",
		CorrelationID: "corr-spool",
	}
}

func TestEnqueueNaming(t *testing.T) {
	dir := t.TempDir()
	path, err := Enqueue(dir, spoolEntry("delivery failed"), 3)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	name := filepath.Base(path)
	if !namePattern.MatchString(name) {
		t.Errorf("item name %q does not match <timestamp>_<id>.json", name)
	}
}

func TestEnqueueLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path, err := Enqueue(dir, spoolEntry("delivery failed"), 3)
	if err != nil {
		t.Fatal(err)
	}

	item, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if item.Attempts != 3 {
		t.Errorf("attempts = %d", item.Attempts)
	}
	if item.Entry == nil || item.Entry.Message != "delivery failed" {
		t.Errorf("entry = %+v", item.Entry)
	}
	if item.Entry.CorrelationID != "corr-spool" {
		t.Errorf("correlation_id = %q", item.Entry.CorrelationID)
	}
	if item.QueuedAt.IsZero() {
		t.Error("queued_at should be set")
	}
}

func TestEnqueueDistinctNames(t *testing.T) {
	dir := t.TempDir()
	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		path, err := Enqueue(dir, spoolEntry("dup"), 3)
		if err != nil {
			t.Fatal(err)
		}
		if seen[path] {
			t.Fatalf("duplicate item path %s", path)
		}
		seen[path] = true
	}
}

func TestListOrderedOldestFirst(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"20260828120002_aaaaaaaa.json",
		"20260828120000_bbbbbbbb.json",
		"20260828120001_cccccccc.json",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Non-item files are skipped.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	want := []string{
		"20260828120000_bbbbbbbb.json",
		"20260828120001_cccccccc.json",
		"20260828120002_aaaaaaaa.json",
	}
	for i := range want {
		if items[i].Name != want[i] {
			t.Errorf("items[%d] = %s, want %s", i, items[i].Name, want[i])
		}
	}
}

func TestListMissingDirectory(t *testing.T) {
	items, err := List(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing directory should not error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty list, got %d items", len(items))
	}
}

func TestLoadCorruptItem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "20260828120000_deadbeef.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("corrupt item should fail to load")
	}
}
