// Package session keeps workflow sessions in memory and expires idle ones.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/career-analyzer/internal/workflow"
)

// NotFoundError is returned for unknown or expired session ids.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session not found or expired: %s", e.ID)
}

// Gauge receives the number of live sessions.
type Gauge interface {
	Set(float64)
}

// Session is one user's workflow. All access to the workflow goes through Do,
// which serializes callers.
type Session struct {
	ID      string
	Created time.Time

	mu       sync.Mutex
	wf       *workflow.Workflow
	lastSeen time.Time
}

// Do runs fn with exclusive access to the session's workflow.
func (s *Session) Do(fn func(*workflow.Workflow) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.wf)
}

// Snapshot returns the current workflow state.
func (s *Session) Snapshot() workflow.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wf.Snapshot()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Factory builds the workflow for a new session.
type Factory func(sessionID string) *workflow.Workflow

// Options configures a Manager.
type Options struct {
	TTL     time.Duration
	Factory Factory
	Logger  *slog.Logger
	Gauge   Gauge
	Clock   func() time.Time
}

// Manager owns the live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl     time.Duration
	factory Factory
	logger  *slog.Logger
	gauge   Gauge
	now     func() time.Time
}

// NewManager creates an empty manager.
func NewManager(opts Options) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		ttl:      opts.TTL,
		factory:  opts.Factory,
		logger:   opts.Logger,
		gauge:    opts.Gauge,
		now:      opts.Clock,
	}
	if m.ttl <= 0 {
		m.ttl = 2 * time.Hour
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Create starts a new session in the upload phase.
func (m *Manager) Create() *Session {
	id := uuid.NewString()
	now := m.now()
	var wf *workflow.Workflow
	if m.factory != nil {
		wf = m.factory(id)
	} else {
		wf = workflow.New(nil)
	}
	s := &Session{ID: id, Created: now, wf: wf, lastSeen: now}

	m.mu.Lock()
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.report(n)
	m.logger.Debug("session created", "session", id)
	return s
}

// Get returns a live session and marks it as used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	now := m.now()
	if now.Sub(s.idleSince()) > m.ttl {
		m.Delete(id)
		return nil, &NotFoundError{ID: id}
	}
	s.touch(now)
	return s, nil
}

// Delete ends a session. It reports whether the session existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if ok {
		m.report(n)
		m.logger.Debug("session ended", "session", id)
	}
	return ok
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops every session idle for longer than the TTL and returns how many went.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	removed := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if removed > 0 {
		m.report(n)
		m.logger.Info("expired idle sessions", "removed", removed, "active", n)
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) report(n int) {
	if m.gauge != nil {
		m.gauge.Set(float64(n))
	}
}
