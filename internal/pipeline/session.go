package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"chronicle/internal/diag"
	"chronicle/internal/entry"
)

// Session groups related entries under one correlation id for the duration of
// a logical unit of work.
//
// Sessions are pipeline-global: one Pipeline value carries at most one active
// session, shared by every goroutine emitting through it. Starting a second
// session replaces the first's correlation context; this is deliberate,
// sessions do not nest.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Machine   string    `json:"machine"`
	User      string    `json:"user"`
}

// StartSession begins a new session and emits an Information entry describing
// it. Any previously active session is replaced.
func (p *Pipeline) StartSession(ctx context.Context, name string) Session {
	session := Session{
		ID:        uuid.NewString(),
		Name:      name,
		StartedAt: time.Now().UTC(),
		Machine:   p.host.Machine,
		User:      p.host.User,
	}

	p.mu.Lock()
	p.session = &session
	p.mu.Unlock()

	data := entry.Fields{
		entry.String("session_id", session.ID),
		entry.String("session_name", session.Name),
		entry.String("machine", session.Machine),
		entry.String("user", session.User),
	}
	p.Emit(ctx, Message{Text: "session started", Level: entry.LevelInformation, Data: data})

	return session
}

// StopSession ends the active session, emitting an Information entry before
// the correlation id is cleared. Stopping with no active session records a
// local warning only.
func (p *Pipeline) StopSession(ctx context.Context) {
	p.mu.Lock()
	active := p.session
	p.mu.Unlock()

	if active == nil {
		p.diag.Record(diag.CounterSessionMisuse, "stop requested with no active session")
		return
	}

	data := entry.Fields{
		entry.String("session_id", active.ID),
		entry.String("session_name", active.Name),
		entry.Any("duration_seconds", int64(time.Since(active.StartedAt).Seconds())),
	}
	p.Emit(ctx, Message{Text: "session ended", Level: entry.LevelInformation, Data: data})

	p.mu.Lock()
	if p.session == active {
		p.session = nil
	}
	p.mu.Unlock()
}

// ActiveSession returns the current session, if any.
func (p *Pipeline) ActiveSession() (Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return Session{}, false
	}
	return *p.session, true
}

// AdoptSession installs a previously persisted session descriptor without
// emitting a start entry. The CLI uses this to share one correlation id
// across consecutive one-shot invocations.
func (p *Pipeline) AdoptSession(session Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = &session
}
