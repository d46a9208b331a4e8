// Package eventsink records log entries in the OS journal.
//
// Entries are rendered as a human-readable block and sent to systemd-journald
// with structured fields alongside, under a configured source identifier.
// When no journal socket is present (containers, non-systemd hosts) writes
// are skipped and the caller is told via ErrUnavailable; this is a soft
// degrade, not a pipeline failure.
package eventsink

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/coreos/go-systemd/v22/journal"

	"chronicle/internal/entry"
)

// ErrUnavailable reports that the OS journal cannot accept writes on this
// host.
var ErrUnavailable = errors.New("os journal unavailable")

// Options carries the event-sink portion of a settings snapshot.
type Options struct {
	Source string
}

// DirectEvent is a raw event written outside the pipeline via
// WriteDirectEvent.
type DirectEvent struct {
	Message  string
	EventID  int
	Severity entry.Level
	Source   string
	LogName  string
}

// Sink writes entries to the OS journal.
type Sink struct {
	enabled func() bool
	send    func(message string, priority journal.Priority, vars map[string]string) error
}

// New builds an event sink backed by systemd-journald.
func New() *Sink {
	return &Sink{
		enabled: journal.Enabled,
		send:    journal.Send,
	}
}

// newWithTransport is the test seam for hosts without a journal socket.
func newWithTransport(enabled func() bool, send func(string, journal.Priority, map[string]string) error) *Sink {
	return &Sink{enabled: enabled, send: send}
}

// Write records one entry. Returns ErrUnavailable when the journal cannot be
// reached so the caller can degrade softly.
func (s *Sink) Write(e *entry.Entry, opts Options) error {
	if !s.enabled() {
		return ErrUnavailable
	}

	vars := map[string]string{
		"SYSLOG_IDENTIFIER": opts.Source,
		"CHRONICLE_LEVEL":   e.Level.String(),
		"CORRELATION_ID":    e.CorrelationID,
		"CALLER_FUNCTION":   e.CallerFunction,
		"CALLER_SCRIPT":     e.CallerScript,
		"CALLER_LINE":       strconv.Itoa(e.CallerLine),
	}

	if err := s.send(RenderBlock(e), severityPriority(e.Level), vars); err != nil {
		return fmt.Errorf("write journal event: %w", err)
	}
	return nil
}

// WriteDirect records a raw event, bypassing entry construction.
func (s *Sink) WriteDirect(evt DirectEvent, opts Options) error {
	if !s.enabled() {
		return ErrUnavailable
	}

	source := evt.Source
	if source == "" {
		source = opts.Source
	}
	vars := map[string]string{
		"SYSLOG_IDENTIFIER": source,
		"CHRONICLE_LEVEL":   evt.Severity.Normalize().String(),
		"EVENT_ID":          strconv.Itoa(evt.EventID),
	}
	if evt.LogName != "" {
		vars["LOG_NAME"] = evt.LogName
	}

	if err := s.send(evt.Message, severityPriority(evt.Severity.Normalize()), vars); err != nil {
		return fmt.Errorf("write journal event: %w", err)
	}
	return nil
}

// severityPriority maps entry levels onto journal priorities via the fixed
// table: Debug/Information record as informational, Warning as warning, and
// Error/Critical as error.
func severityPriority(level entry.Level) journal.Priority {
	switch level {
	case entry.LevelWarning:
		return journal.PriWarning
	case entry.LevelError, entry.LevelCritical:
		return journal.PriErr
	default:
		return journal.PriInfo
	}
}
