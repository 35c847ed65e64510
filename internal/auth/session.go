package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/gosuda/cabinet/internal/tenant"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("auth: session not found")

// Session is a logged-in browser, or under a TenantKey the OAuth token the
// background calendar mirror uses for that tenant.
type Session struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	Name      string        `json:"name,omitempty"`
	Tenant    tenant.ID     `json:"tenant"`
	Scopes    []string      `json:"scopes,omitempty"`
	Token     *oauth2.Token `json:"token,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SessionStore is where sessions live for the lifetime of the server.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// TenantKey is the store key holding a tenant's OAuth token.
func TenantKey(t tenant.ID) string {
	return "tenant:" + t.String()
}

// MemorySessionStore keeps sessions in process memory.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session), now: time.Now}
}

func (m *MemorySessionStore) Get(ctx context.Context, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || s.Expired(m.now()) {
		return nil, fmt.Errorf("memorySessionStore.Get: %w", ErrSessionNotFound)
	}
	cp := *s
	return &cp, nil
}

func (m *MemorySessionStore) Put(ctx context.Context, s *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.ID == "" {
		return errors.New("memorySessionStore.Put: empty session id")
	}

	cp := *s
	m.mu.Lock()
	m.sessions[s.ID] = &cp
	m.pruneLocked()
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) pruneLocked() {
	now := m.now()
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
		}
	}
}
