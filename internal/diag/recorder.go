package diag

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"chronicle/internal/logging"
)

// Counter names used by the pipeline. Tests assert on these instead of
// scraping warning text.
const (
	CounterFileSinkError    = "file_sink_error"
	CounterEventUnavailable = "event_sink_unavailable"
	CounterEventSinkError   = "event_sink_error"
	CounterSiemSpooled      = "siem_spooled"
	CounterSpoolError       = "spool_error"
	CounterSerialization    = "serialization"
	CounterFallback         = "fallback"
	CounterSessionMisuse    = "session_misuse"
)

// Recorder accumulates degraded-path observations.
type Recorder struct {
	mu       sync.Mutex
	counters map[string]uint64

	logger *slog.Logger
	store  *Store
}

// NewRecorder builds a recorder. Both logger and store may be nil; a nil
// store disables the journal, a nil logger disables warnings.
func NewRecorder(logger *slog.Logger, store *Store) *Recorder {
	return &Recorder{
		counters: make(map[string]uint64),
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		store:    store,
	}
}

// Record notes one degraded-path event: bump the named counter, warn through
// the diagnostics logger, and append a journal row best-effort.
func (r *Recorder) Record(counter, reason string, attrs ...logging.Attr) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.counters[counter]++
	r.mu.Unlock()

	args := append([]logging.Attr{logging.String("reason", counter)}, attrs...)
	r.logger.Warn(reason, logging.Args(args...)...)

	if r.store != nil {
		detail := ""
		for _, attr := range attrs {
			if attr.Key == "error" || attr.Key == logging.FieldPath {
				detail = attr.Value.Resolve().String()
				break
			}
		}
		// Journal writes share the never-propagate contract.
		_ = r.store.Record(context.Background(), counter, reason, detail)
	}
}

// Count returns the current value of one counter.
func (r *Recorder) Count(counter string) uint64 {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[counter]
}

// Counters returns a stable snapshot of every non-zero counter.
func (r *Recorder) Counters() []CounterValue {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CounterValue, 0, len(r.counters))
	for name, value := range r.counters {
		out = append(out, CounterValue{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CounterValue is one named counter reading.
type CounterValue struct {
	Name  string
	Value uint64
}
