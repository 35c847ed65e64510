package auth_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/gosuda/cabinet/internal/auth"
	"github.com/gosuda/cabinet/internal/tenant"
)

const testSecret = "a-session-secret-that-is-long-enough-000"

func newAuthService(t *testing.T, email string) (*auth.Service, auth.SessionStore) {
	t.Helper()

	p := auth.NewGoogleProvider("test-id", "test-secret", "https://example.com/cb")
	p.HTTPClient = &mockHTTPClient{handler: googleUserInfoHandler(email, "Alice Smith")}
	store := auth.NewMemorySessionStore()
	return auth.NewService(p, store, testSecret, time.Hour), store
}

func stateFromLoginURL(t *testing.T, svc *auth.Service) string {
	t.Helper()

	loginURL, err := svc.LoginURL("/seances")
	require.NoError(t, err)
	u, err := url.Parse(loginURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

// --- Complete ---

func TestService_Complete_HappyPath(t *testing.T) {
	t.Parallel()

	svc, store := newAuthService(t, "alice@gmail.com")
	ctx := oauthCtx(t, newFakeTokenServer(t).URL)
	state := stateFromLoginURL(t, svc)

	sess, returnTo, err := svc.Complete(ctx, "code", state)
	require.NoError(t, err)
	assert.Equal(t, "/seances", returnTo)
	assert.Equal(t, "alice@gmail.com", sess.Email)
	assert.Equal(t, tenant.Resolve("alice@gmail.com"), sess.Tenant)
	assert.Nil(t, sess.Token, "browser sessions never carry the token")

	ten, got := svc.Resolve(ctx, sess.ID)
	assert.Equal(t, sess.Tenant, ten)
	require.NotNil(t, got)

	tokenSess, err := store.Get(ctx, auth.TenantKey(sess.Tenant))
	require.NoError(t, err)
	require.NotNil(t, tokenSess.Token)
	assert.Equal(t, "fake-access-token", tokenSess.Token.AccessToken)

	ts, err := svc.TokenSource(ctx, sess.Tenant)
	require.NoError(t, err)
	assert.NotNil(t, ts)
}

func TestService_Complete_KeepsRefreshToken(t *testing.T) {
	t.Parallel()

	svc, store := newAuthService(t, "alice@gmail.com")
	ctx := oauthCtx(t, newFakeTokenServer(t).URL)
	ten := tenant.Resolve("alice@gmail.com")

	require.NoError(t, store.Put(ctx, &auth.Session{
		ID:     auth.TenantKey(ten),
		Tenant: ten,
		Token:  &oauth2.Token{AccessToken: "old", RefreshToken: "old-refresh"},
	}))

	_, _, err := svc.Complete(ctx, "code", stateFromLoginURL(t, svc))
	require.NoError(t, err)

	tokenSess, err := store.Get(ctx, auth.TenantKey(ten))
	require.NoError(t, err)
	assert.Equal(t, "fake-access-token", tokenSess.Token.AccessToken)
	assert.Equal(t, "old-refresh", tokenSess.Token.RefreshToken)
}

func TestService_Complete_Rejected(t *testing.T) {
	t.Parallel()

	t.Run("bad state", func(t *testing.T) {
		t.Parallel()

		svc, _ := newAuthService(t, "alice@gmail.com")
		ctx := oauthCtx(t, newFakeTokenServer(t).URL)

		_, _, err := svc.Complete(ctx, "code", "forged")
		require.ErrorIs(t, err, auth.ErrInvalidState)
	})

	t.Run("state signed with another secret", func(t *testing.T) {
		t.Parallel()

		svc, _ := newAuthService(t, "alice@gmail.com")
		ctx := oauthCtx(t, newFakeTokenServer(t).URL)
		state, err := auth.IssueState("another-secret", "/", time.Minute)
		require.NoError(t, err)

		_, _, err = svc.Complete(ctx, "code", state)
		require.ErrorIs(t, err, auth.ErrInvalidState)
	})

	t.Run("no email", func(t *testing.T) {
		t.Parallel()

		svc, _ := newAuthService(t, "")
		ctx := oauthCtx(t, newFakeTokenServer(t).URL)

		_, _, err := svc.Complete(ctx, "code", stateFromLoginURL(t, svc))
		require.Error(t, err)
	})

	t.Run("token exchange fails", func(t *testing.T) {
		t.Parallel()

		svc, _ := newAuthService(t, "alice@gmail.com")
		ctx := oauthCtx(t, newErrorTokenServer(t).URL)

		_, _, err := svc.Complete(ctx, "code", stateFromLoginURL(t, svc))
		require.Error(t, err)
	})
}

// --- Resolve / Logout ---

func TestService_Resolve_Demo(t *testing.T) {
	t.Parallel()

	svc, store := newAuthService(t, "alice@gmail.com")
	ctx := context.Background()
	ten := tenant.ID("alice.0a1b2c3d")
	require.NoError(t, store.Put(ctx, &auth.Session{ID: auth.TenantKey(ten), Tenant: ten}))

	for _, id := range []string{"", "unknown", "6f1c2d7e-8a1b-4c3d-9e0f-112233445566", auth.TenantKey(ten)} {
		got, sess := svc.Resolve(ctx, id)
		assert.Equal(t, tenant.Demo, got, "id %q", id)
		assert.Nil(t, sess)
	}
}

func TestService_Logout(t *testing.T) {
	t.Parallel()

	svc, store := newAuthService(t, "alice@gmail.com")
	ctx := oauthCtx(t, newFakeTokenServer(t).URL)

	sess, _, err := svc.Complete(ctx, "code", stateFromLoginURL(t, svc))
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.ID))
	got, _ := svc.Resolve(ctx, sess.ID)
	assert.Equal(t, tenant.Demo, got)

	require.NoError(t, svc.Logout(ctx, auth.TenantKey(sess.Tenant)))
	_, err = store.Get(ctx, auth.TenantKey(sess.Tenant))
	require.NoError(t, err, "logout never removes the tenant token")
}

func TestService_Disabled(t *testing.T) {
	t.Parallel()

	svc := auth.NewService(nil, auth.NewMemorySessionStore(), testSecret, time.Hour)
	assert.False(t, svc.Enabled())

	_, err := svc.LoginURL("/")
	require.ErrorIs(t, err, auth.ErrNotConnected)

	_, err = svc.TokenSource(context.Background(), tenant.ID("x.00000000"))
	require.ErrorIs(t, err, auth.ErrNotConnected)
}

func TestService_TokenSource_NotConnected(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService(t, "alice@gmail.com")

	_, err := svc.TokenSource(context.Background(), tenant.ID("bob.00000000"))
	require.ErrorIs(t, err, auth.ErrNotConnected)
}
