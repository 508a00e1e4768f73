package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is one authenticated connection lease. The token is the bearer
// credential a client presents on every websocket message.
type Session struct {
	ID         string
	PlayerName string
	Token      string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Manager hands out session leases and expires the ones whose holders went
// away without disconnecting.
type Manager struct {
	leasePeriod time.Duration
	logger      *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session // keyed by token
	byPlayer map[string]string   // player name -> token
}

// NewManager creates a session manager.
func NewManager(leasePeriod time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		leasePeriod: leasePeriod,
		logger:      logger,
		sessions:    make(map[string]*Session),
		byPlayer:    make(map[string]string),
	}
}

// Register creates a lease for playerName. Re-registering a name revokes the
// previous lease: one live session per player.
func (m *Manager) Register(playerName string) (*Session, error) {
	if playerName == "" {
		return nil, fmt.Errorf("player name is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.byPlayer[playerName]; ok {
		delete(m.sessions, old)
	}

	now := time.Now()
	s := &Session{
		ID:         uuid.New().String(),
		PlayerName: playerName,
		Token:      uuid.New().String(),
		CreatedAt:  now,
		ExpiresAt:  now.Add(m.leasePeriod),
	}
	m.sessions[s.Token] = s
	m.byPlayer[playerName] = s.Token

	m.logger.Info("session registered",
		zap.String("session_id", s.ID),
		zap.String("player", playerName),
	)
	return s, nil
}

// Validate resolves a token to its live session and renews the lease.
func (m *Manager) Validate(token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil, fmt.Errorf("unknown session token")
	}
	if time.Now().After(s.ExpiresAt) {
		delete(m.sessions, token)
		delete(m.byPlayer, s.PlayerName)
		return nil, fmt.Errorf("session for %s expired", s.PlayerName)
	}
	s.ExpiresAt = time.Now().Add(m.leasePeriod)
	return s, nil
}

// Revoke drops a session by token.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[token]; ok {
		delete(m.sessions, token)
		delete(m.byPlayer, s.PlayerName)
		m.logger.Info("session revoked", zap.String("player", s.PlayerName))
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupExpiredSessions sweeps expired leases until the context is done.
func (m *Manager) CleanupExpiredSessions(ctx context.Context) {
	ticker := time.NewTicker(m.leasePeriod / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	expired := 0
	for token, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, token)
			delete(m.byPlayer, s.PlayerName)
			expired++
		}
	}
	if expired > 0 {
		m.logger.Info("expired sessions swept", zap.Int("count", expired))
	}
}

// CloseAll drops every session, used during shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := len(m.sessions)
	m.sessions = make(map[string]*Session)
	m.byPlayer = make(map[string]string)
	m.logger.Info("all sessions closed", zap.Int("count", count))
}
