package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rocketrun/rocketrun-server/internal/level"
	"github.com/rocketrun/rocketrun-server/internal/store"
)

// Manager manages all active sessions.
type Manager struct {
	sessions map[string]*Session // code -> session
	levels   *level.Registry
	store    store.Store

	// seedFn produces the RNG seed for each new session. Tests pin it.
	seedFn func() int64

	mu sync.RWMutex
}

// NewManager creates a session manager backed by the given level registry
// and store.
func NewManager(levels *level.Registry, st store.Store) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		levels:   levels,
		store:    st,
		seedFn:   func() int64 { return time.Now().UnixNano() },
	}
}

// NewManagerWithSeed is like NewManager but every session starts from the
// same fixed seed, for reproducible tests.
func NewManagerWithSeed(levels *level.Registry, st store.Store, seed int64) *Manager {
	m := NewManager(levels, st)
	m.seedFn = func() int64 { return seed }
	return m
}

// CreateSession creates a new session and returns it.
func (m *Manager) CreateSession() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := make(map[string]bool, len(m.sessions))
	for code := range m.sessions {
		existing[code] = true
	}

	code := GenerateCode(existing)
	sess := NewSession(code, m.levels, m.store, m.seedFn())
	m.sessions[code] = sess

	slog.Info("session created", "code", code)
	return sess
}

// GetSession returns a session by its code.
func (m *Manager) GetSession(code string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[code]
}

// RemoveSession removes a session by its code.
func (m *Manager) RemoveSession(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, code)
	slog.Info("session removed", "code", code)
}

// SessionCount returns the number of active sessions.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// FindSessionByPlayerID finds the session containing a player.
func (m *Manager) FindSessionByPlayerID(playerID string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, sess := range m.sessions {
		if sess.HasPlayer(playerID) {
			return sess
		}
	}
	return nil
}
