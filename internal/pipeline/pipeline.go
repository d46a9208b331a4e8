package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chronicle/internal/config"
	"chronicle/internal/diag"
	"chronicle/internal/entry"
	"chronicle/internal/eventsink"
	"chronicle/internal/filesink"
	"chronicle/internal/logging"
	"chronicle/internal/siem"
	"chronicle/internal/spool"
)

// Message is the caller-facing input to Emit. Only Text is required; an
// unset Level defaults to Information.
type Message struct {
	Text          string
	Level         entry.Level
	CorrelationID string
	Err           error
	Data          entry.Fields
}

// hostIdentity is resolved once at construction and stamped on every entry.
type hostIdentity struct {
	Machine     string
	User        string
	ProcessID   int
	ProcessName string
}

// Pipeline owns the runtime settings, the active session, and the sinks.
type Pipeline struct {
	mu       sync.Mutex
	settings Settings
	session  *Session

	host   hostIdentity
	logger *slog.Logger
	diag   *diag.Recorder

	files  *filesink.Sink
	events *eventsink.Sink
	siem   *siem.Client
}

// Option customizes pipeline construction.
type Option func(*Pipeline)

// WithDiagnostics replaces the degraded-path recorder.
func WithDiagnostics(recorder *diag.Recorder) Option {
	return func(p *Pipeline) {
		if recorder != nil {
			p.diag = recorder
		}
	}
}

// WithSiemClient replaces the delivery client; tests inject one with a fake
// sleeper or reduced backoff.
func WithSiemClient(client *siem.Client) Option {
	return func(p *Pipeline) {
		if client != nil {
			p.siem = client
		}
	}
}

// WithFileSink replaces the file sink.
func WithFileSink(sink *filesink.Sink) Option {
	return func(p *Pipeline) {
		if sink != nil {
			p.files = sink
		}
	}
}

// WithEventSink replaces the OS event sink.
func WithEventSink(sink *eventsink.Sink) Option {
	return func(p *Pipeline) {
		if sink != nil {
			p.events = sink
		}
	}
}

// New builds a pipeline seeded from cfg. The logger receives chronicle's own
// diagnostics; nil degrades to no-op.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline requires a config")
	}

	p := &Pipeline{
		settings: settingsFromConfig(cfg),
		host:     resolveHostIdentity(),
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		diag:     diag.NewRecorder(logger, nil),
		files:    filesink.New(logger),
		events:   eventsink.New(),
		siem:     siem.NewClient(logger),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func resolveHostIdentity() hostIdentity {
	host := hostIdentity{
		Machine:     "unknown",
		User:        "unknown",
		ProcessID:   os.Getpid(),
		ProcessName: filepath.Base(os.Args[0]),
	}
	if name, err := os.Hostname(); err == nil && name != "" {
		host.Machine = name
	}
	if current, err := user.Current(); err == nil && current.Username != "" {
		host.User = current.Username
	} else if env := os.Getenv("USER"); env != "" {
		host.User = env
	}
	if exe, err := os.Executable(); err == nil && exe != "" {
		host.ProcessName = filepath.Base(exe)
	}
	return host
}

// Configure applies the present option fields as one atomic partial update
// and returns the resulting snapshot. Invalid values fail the call without
// mutating anything.
func (p *Pipeline) Configure(opts Options) (Settings, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next, err := p.settings.apply(opts)
	if err != nil {
		return p.settings, err
	}
	p.settings = next
	return next, nil
}

// GetConfig returns a snapshot of the current settings.
func (p *Pipeline) GetConfig() Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings
}

// Diagnostics exposes the degraded-path recorder.
func (p *Pipeline) Diagnostics() *diag.Recorder {
	return p.diag
}

// Emit builds one entry from msg and dispatches it to every enabled sink.
// Entries below the configured level threshold produce no side effects at
// all. Emit never panics and never reports failure to the caller; anything
// that goes wrong inside ends up in diagnostics or, as a last resort, the
// fallback file.
func (p *Pipeline) Emit(ctx context.Context, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			p.writeFallback(msg.Text, fmt.Sprintf("panic during emit: %v", r))
		}
	}()

	settings, sessionID := p.snapshot()
	level := msg.Level.Normalize()
	if level < settings.LogLevel {
		return
	}

	e := p.buildEntry(msg, level, sessionID)
	p.dispatch(ctx, e, settings)
}

// snapshot reads the settings and session correlation id under one lock
// acquisition so a dispatch never mixes two configurations.
func (p *Pipeline) snapshot() (Settings, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sessionID := ""
	if p.session != nil {
		sessionID = p.session.ID
	}
	return p.settings, sessionID
}

func (p *Pipeline) buildEntry(msg Message, level entry.Level, sessionID string) *entry.Entry {
	caller := resolveCaller()

	// Correlation precedence: explicit value, then active session, then a
	// fresh id. Never empty.
	correlation := strings.TrimSpace(msg.CorrelationID)
	if correlation == "" {
		correlation = sessionID
	}
	if correlation == "" {
		correlation = uuid.NewString()
	}

	data, rewritten := msg.Data.Sanitize()
	for _, key := range rewritten {
		p.diag.Record(diag.CounterSerialization,
			"additional data value was not serializable; stored as text",
			logging.String("key", key),
		)
	}

	var exc *entry.Exception
	if msg.Err != nil {
		exc = entry.NewException(msg.Err, captureStack())
	}

	return &entry.Entry{
		Timestamp:      time.Now().UTC(),
		Level:          level,
		Message:        msg.Text,
		Machine:        p.host.Machine,
		ProcessID:      p.host.ProcessID,
		ProcessName:    p.host.ProcessName,
		User:           p.host.User,
		CorrelationID:  correlation,
		CallerFunction: caller.Function,
		CallerScript:   caller.Script,
		CallerLine:     caller.Line,
		Exception:      exc,
		Data:           data,
	}
}

// dispatch visits the sinks sequentially. A failing sink degrades to a
// diagnostics record and never blocks the remaining sinks.
func (p *Pipeline) dispatch(ctx context.Context, e *entry.Entry, settings Settings) {
	if settings.EnableFileSink {
		err := p.files.Append(e, filesink.Options{
			Dir:      settings.LogDir,
			BaseName: settings.BaseName,
			MaxBytes: settings.maxBytes(),
			MaxFiles: settings.MaxLogFiles,
		})
		if err != nil {
			p.diag.Record(diag.CounterFileSinkError, "file sink write failed",
				logging.Error(err),
				logging.String(logging.FieldCorrelationID, e.CorrelationID),
			)
		}
	}

	if settings.EnableEventSink {
		err := p.events.Write(e, eventsink.Options{Source: settings.EventSource})
		switch {
		case errors.Is(err, eventsink.ErrUnavailable):
			p.diag.Record(diag.CounterEventUnavailable, "os journal unavailable; event skipped")
		case err != nil:
			p.diag.Record(diag.CounterEventSinkError, "event sink write failed",
				logging.Error(err),
			)
		}
	}

	if settings.EnableSiem && settings.SiemEndpoint != "" {
		p.deliverSiem(ctx, e, settings)
	}
}

// deliverSiem forwards the entry to the collector and, when every attempt
// fails, persists exactly one durable spool item. Even the spool write
// failing only produces a local warning; the entry is considered handled.
func (p *Pipeline) deliverSiem(ctx context.Context, e *entry.Entry, settings Settings) {
	attempts, err := p.siem.Deliver(ctx, e, siem.Target{
		Endpoint: settings.SiemEndpoint,
		Token:    settings.SiemToken,
		Envelope: settings.SiemType,
		Timeout:  settings.SiemTimeout,
	})
	if err == nil {
		return
	}

	path, spoolErr := spool.Enqueue(settings.SpoolDir, e, attempts)
	if spoolErr != nil {
		p.diag.Record(diag.CounterSpoolError, "siem delivery exhausted and spool write failed; entry dropped",
			logging.Error(spoolErr),
			logging.String(logging.FieldCorrelationID, e.CorrelationID),
		)
		return
	}
	p.diag.Record(diag.CounterSiemSpooled, "siem delivery exhausted; entry spooled for redelivery",
		logging.String(logging.FieldPath, path),
		logging.Int("attempts", attempts),
		logging.Error(err),
	)
}

// WriteDirectEvent bypasses entry construction and writes only to the OS
// event sink. Like Emit it never reports failure; problems degrade to
// diagnostics.
func (p *Pipeline) WriteDirectEvent(evt eventsink.DirectEvent) {
	defer func() {
		if r := recover(); r != nil {
			p.writeFallback(evt.Message, fmt.Sprintf("panic during direct event: %v", r))
		}
	}()

	settings, _ := p.snapshot()
	err := p.events.WriteDirect(evt, eventsink.Options{Source: settings.EventSource})
	switch {
	case errors.Is(err, eventsink.ErrUnavailable):
		p.diag.Record(diag.CounterEventUnavailable, "os journal unavailable; direct event skipped")
	case err != nil:
		p.diag.Record(diag.CounterEventSinkError, "direct event write failed",
			logging.Error(err),
		)
	}
}
