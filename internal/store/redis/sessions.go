package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gosuda/cabinet/internal/auth"
	"github.com/gosuda/cabinet/internal/secrets"
)

const sessionPrefix = "cabinet:session:"

// SessionStore keeps sessions as JSON values, sealed when a vault is set
// since tenant entries carry OAuth refresh tokens. Keys expire with the
// session; entries without expiry persist.
type SessionStore struct {
	client *redis.Client
	vault  *secrets.Vault
}

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithVault seals every stored value with v.
func WithVault(v *secrets.Vault) SessionOption {
	return func(s *SessionStore) { s.vault = v }
}

func NewSessionStore(client *redis.Client, opts ...SessionOption) *SessionStore {
	s := &SessionStore{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) Get(ctx context.Context, id string) (*auth.Session, error) {
	data, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis.SessionStore.Get: %w", auth.ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis.SessionStore.Get: %w", err)
	}

	sess, err := s.decode(data)
	if err != nil {
		return nil, fmt.Errorf("redis.SessionStore.Get: %w", err)
	}
	if sess.Expired(time.Now()) {
		return nil, fmt.Errorf("redis.SessionStore.Get: %w", auth.ErrSessionNotFound)
	}
	return sess, nil
}

func (s *SessionStore) Put(ctx context.Context, sess *auth.Session) error {
	if sess.ID == "" {
		return errors.New("redis.SessionStore.Put: empty session id")
	}
	data, err := s.encode(sess)
	if err != nil {
		return fmt.Errorf("redis.SessionStore.Put: %w", err)
	}

	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = time.Until(sess.ExpiresAt)
		if ttl <= 0 {
			return nil
		}
	}
	if err := s.client.Set(ctx, sessionPrefix+sess.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis.SessionStore.Put: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis.SessionStore.Delete: %w", err)
	}
	return nil
}

func (s *SessionStore) encode(sess *auth.Session) ([]byte, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if s.vault == nil {
		return data, nil
	}
	return s.vault.Seal(data)
}

func (s *SessionStore) decode(data []byte) (*auth.Session, error) {
	if s.vault != nil {
		opened, err := s.vault.Open(data)
		if err != nil {
			return nil, err
		}
		data = opened
	}
	var sess auth.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}
