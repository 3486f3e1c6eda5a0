package services

import (
	"sync"
	"time"
)

// SessionManager holds one Session per operator
type SessionManager struct {
	store EventStore
	opts  SessionOptions

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionManager(store EventStore, opts SessionOptions) *SessionManager {
	return &SessionManager{
		store:    store,
		opts:     opts.withDefaults(),
		sessions: make(map[string]*Session),
	}
}

// Get returns the session of operator, creating it on first use
func (m *SessionManager) Get(operator string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[operator]; ok {
		return s
	}

	s := NewSession(operator, m.store, m.opts)
	m.sessions[operator] = s
	m.updateGauge()
	return s
}

// Remove drops the session of operator
func (m *SessionManager) Remove(operator string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, operator)
	m.updateGauge()
}

// Count returns the number of held sessions
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// EvictIdle drops sessions not used for longer than idle and returns how
// many were dropped. Sessions with a save or fetch in flight are kept.
func (m *SessionManager) EvictIdle(idle time.Duration) int {
	cutoff := m.opts.Now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for operator, s := range m.sessions {
		if !s.LastActive().Before(cutoff) || s.busy() {
			continue
		}
		delete(m.sessions, operator)
		evicted++
	}
	if evicted > 0 {
		m.updateGauge()
	}
	return evicted
}

func (m *SessionManager) updateGauge() {
	if m.opts.Metrics != nil {
		m.opts.Metrics.ActiveSessions.Set(float64(len(m.sessions)))
	}
}

func (s *Session) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading || (s.edit != nil && s.edit.saving)
}
