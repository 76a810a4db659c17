package auth

import (
	"sync"
	"time"

	"github.com/smartsniper31/network-guardian/internal/models"
)

// SessionManager keeps active browser sessions in memory. The console
// is single-tenant and local, so sessions deliberately do not survive
// a restart.
type SessionManager struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]models.Session
}

// NewSessionManager creates a manager issuing sessions with the given TTL.
func NewSessionManager(ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionManager{
		ttl:      ttl,
		sessions: make(map[string]models.Session),
	}
}

// Create issues a new session for the authenticated user.
func (m *SessionManager) Create(cred models.Credential) (models.Session, error) {
	token, err := generateToken()
	if err != nil {
		return models.Session{}, err
	}

	session := models.Session{
		Token:     token,
		Email:     cred.Email,
		Name:      cred.Name,
		ExpiresAt: time.Now().Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[token] = session
	m.mu.Unlock()
	return session, nil
}

// Get retrieves a live session by token, or nil.
func (m *SessionManager) Get(token string) *models.Session {
	if token == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[token]
	if !ok {
		return nil
	}
	if time.Now().After(session.ExpiresAt) {
		delete(m.sessions, token)
		return nil
	}
	return &session
}

// Delete removes a session.
func (m *SessionManager) Delete(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// DeleteAll removes every session, e.g. after a factory reset.
func (m *SessionManager) DeleteAll() {
	m.mu.Lock()
	m.sessions = make(map[string]models.Session)
	m.mu.Unlock()
}

// CleanupExpired removes expired sessions.
func (m *SessionManager) CleanupExpired() {
	now := time.Now()
	m.mu.Lock()
	for token, session := range m.sessions {
		if now.After(session.ExpiresAt) {
			delete(m.sessions, token)
		}
	}
	m.mu.Unlock()
}
