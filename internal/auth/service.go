package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/gosuda/cabinet/internal/tenant"
)

const stateTTL = 10 * time.Minute

// ErrNotConnected is returned when a tenant has no stored OAuth token.
var ErrNotConnected = errors.New("auth: google account not connected")

// Service runs the Google login flow and resolves sessions to tenants.
type Service struct {
	provider   *OAuthProvider
	store      SessionStore
	secret     string
	sessionTTL time.Duration
}

// NewService creates a new auth service. provider may be nil when Google
// login is not configured; every request then resolves to the demo tenant.
func NewService(provider *OAuthProvider, store SessionStore, secret string, sessionTTL time.Duration) *Service {
	return &Service{
		provider:   provider,
		store:      store,
		secret:     secret,
		sessionTTL: sessionTTL,
	}
}

// Enabled reports whether Google login is configured.
func (s *Service) Enabled() bool { return s.provider != nil }

// LoginURL returns the consent URL carrying a fresh signed state.
func (s *Service) LoginURL(returnTo string) (string, error) {
	if s.provider == nil {
		return "", fmt.Errorf("auth.LoginURL: %w", ErrNotConnected)
	}
	state, err := IssueState(s.secret, returnTo, stateTTL)
	if err != nil {
		return "", fmt.Errorf("auth.LoginURL: %w", err)
	}
	return s.provider.AuthorizationURL(state), nil
}

// Complete finishes the OAuth callback: it checks the state, exchanges the
// code, stores a new browser session and caches the token under the
// tenant key. returnTo comes from the state.
func (s *Service) Complete(ctx context.Context, code, state string) (sess *Session, returnTo string, err error) {
	if s.provider == nil {
		return nil, "", fmt.Errorf("auth.Complete: %w", ErrNotConnected)
	}
	claims, err := ValidateState(s.secret, state)
	if err != nil {
		return nil, "", fmt.Errorf("auth.Complete: %w", err)
	}

	info, token, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("auth.Complete: %w", err)
	}

	ten := tenant.Resolve(info.Email)
	if ten.IsDemo() {
		return nil, "", fmt.Errorf("auth.Complete: provider returned no usable email: %w", ErrInvalidState)
	}

	now := time.Now()
	sess = &Session{
		ID:        uuid.NewString(),
		Email:     info.Email,
		Name:      info.Name,
		Tenant:    ten,
		Scopes:    s.provider.Scopes,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("auth.Complete: %w", err)
	}

	if err := s.storeTenantToken(ctx, ten, info, token); err != nil {
		return nil, "", fmt.Errorf("auth.Complete: %w", err)
	}

	return sess, claims.ReturnTo, nil
}

func (s *Service) storeTenantToken(ctx context.Context, ten tenant.ID, info *UserInfo, token *oauth2.Token) error {
	// Google only sends a refresh token on first consent; keep the old one.
	if token.RefreshToken == "" {
		if prev, err := s.store.Get(ctx, TenantKey(ten)); err == nil && prev.Token != nil {
			token.RefreshToken = prev.Token.RefreshToken
		}
	}
	return s.store.Put(ctx, &Session{
		ID:        TenantKey(ten),
		Email:     info.Email,
		Name:      info.Name,
		Tenant:    ten,
		Scopes:    s.provider.Scopes,
		Token:     token,
		CreatedAt: time.Now(),
	})
}

// Session returns the browser session with id. Only UUIDs name browser
// sessions; tenant keys never resolve here.
func (s *Service) Session(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("auth.Session: %w", ErrSessionNotFound)
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("auth.Session: %w", err)
	}
	return sess, nil
}

// Resolve maps a session id to its tenant. Anything that does not resolve
// to a live session is the demo tenant.
func (s *Service) Resolve(ctx context.Context, id string) (tenant.ID, *Session) {
	sess, err := s.Session(ctx, id)
	if err != nil {
		return tenant.Demo, nil
	}
	return sess.Tenant, sess
}

// Logout deletes the browser session. The tenant token stays so the
// calendar mirror keeps working.
func (s *Service) Logout(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil //nolint:nilerr // nothing to delete
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("auth.Logout: %w", err)
	}
	return nil
}

// TokenSource returns an auto-refreshing token source for the tenant's
// connected Google account.
func (s *Service) TokenSource(ctx context.Context, t tenant.ID) (oauth2.TokenSource, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("auth.TokenSource: %w", ErrNotConnected)
	}
	sess, err := s.store.Get(ctx, TenantKey(t))
	if err != nil || sess.Token == nil {
		return nil, fmt.Errorf("auth.TokenSource %s: %w", t, ErrNotConnected)
	}
	return s.provider.TokenSource(ctx, sess.Token), nil
}
