package workflow

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"fdms-kiosk-backend/internal/logger"
)

// Manager hands out one Workflow per kiosk station session, keyed by an
// opaque session id. Instances are independent; an idle sweep reclaims
// abandoned stations.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Workflow
	factory  func() *Workflow
	idleTTL  time.Duration
	now      func() time.Time
}

func NewManager(factory func() *Workflow, idleTTL time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Workflow),
		factory:  factory,
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Create starts a fresh workflow session and returns its id.
func (m *Manager) Create() (string, *Workflow) {
	id := uuid.NewString()
	w := m.factory()

	m.mu.Lock()
	m.sessions[id] = w
	m.mu.Unlock()

	logger.Debug("Workflow session created", "session_id", id)
	return id, w
}

// Get looks up a session by id.
func (m *Manager) Get(id string) (*Workflow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.sessions[id]
	return w, ok
}

// Delete removes a session outright.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// SweepIdle drops sessions idle longer than the configured TTL and returns
// how many were removed.
func (m *Manager) SweepIdle() int {
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, w := range m.sessions {
		if w.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		logger.Info("Idle workflow sessions swept", "removed", removed, "remaining", len(m.sessions))
	}
	return removed
}
