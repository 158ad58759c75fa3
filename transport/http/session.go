package http

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/slighter12/toolbelt-mcp-go/logger"
)

// SessionManager tracks MCP sessions for Streamable HTTP
type SessionManager struct {
	sessions map[string]*Session
	idle     time.Duration
	now      func() time.Time
	mu       sync.Mutex
}

// Session represents an MCP session
type Session struct {
	ID              string
	Created         time.Time
	LastSeen        time.Time
	ProtocolVersion string
	Initialized     bool
}

// NewSessionManager creates a session manager. A non-positive idle
// disables expiry.
func NewSessionManager(idle time.Duration, now func() time.Time) *SessionManager {
	if now == nil {
		now = time.Now
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		idle:     idle,
		now:      now,
	}
}

// CreateSession registers a new session with a random id.
func (sm *SessionManager) CreateSession(protocolVersion string) Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := sm.now()
	session := &Session{
		ID:              uuid.NewString(),
		Created:         now,
		LastSeen:        now,
		ProtocolVersion: protocolVersion,
	}
	sm.sessions[session.ID] = session
	return *session
}

// TouchSession refreshes LastSeen and returns a copy of the session.
func (sm *SessionManager) TouchSession(sessionID string) (Session, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, ok := sm.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	session.LastSeen = sm.now()
	return *session, true
}

func (sm *SessionManager) MarkInitialized(sessionID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, ok := sm.sessions[sessionID]; ok {
		session.Initialized = true
	}
}

// RemoveSession deletes a session and reports whether it existed.
func (sm *SessionManager) RemoveSession(sessionID string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, ok := sm.sessions[sessionID]; !ok {
		return false
	}
	delete(sm.sessions, sessionID)
	return true
}

func (sm *SessionManager) Len() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}

// CleanupSessions removes sessions idle for longer than the configured
// timeout and returns how many were dropped.
func (sm *SessionManager) CleanupSessions() int {
	if sm.idle <= 0 {
		return 0
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := sm.now()
	removed := 0
	for id, session := range sm.sessions {
		if now.Sub(session.LastSeen) > sm.idle {
			delete(sm.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is done.
func (sm *SessionManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := sm.CleanupSessions(); removed > 0 {
				logger.Debug("Expired idle MCP sessions", "count", removed)
			}
		}
	}
}
