package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/cabinet/internal/auth"
	"github.com/gosuda/cabinet/internal/billing"
	"github.com/gosuda/cabinet/internal/config"
	"github.com/gosuda/cabinet/internal/events"
	"github.com/gosuda/cabinet/internal/notify"
	"github.com/gosuda/cabinet/internal/numbering"
	"github.com/gosuda/cabinet/internal/render"
	"github.com/gosuda/cabinet/internal/server"
	"github.com/gosuda/cabinet/internal/store/flatfile"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Addr:         ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			CORSOrigins:  []string{"http://localhost:5173"},
		},
		Session:   config.SessionConfig{CookieName: "cabinet_session", TTL: time.Hour},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
}

func newServer(t *testing.T, assets fstest.MapFS) http.Handler {
	t.Helper()

	store, err := flatfile.New(t.TempDir())
	require.NoError(t, err)

	numbers := numbering.NewService(store.Seances(), store.Documents(),
		numbering.WithCounter(numbering.NewFileCounter(store.Root())))
	publisher := events.NewPublisher(events.NewMemory())
	svc := billing.NewService(billing.Repositories{
		Clients:   store.Clients(),
		Tarifs:    store.Tarifs(),
		Seances:   store.Seances(),
		Settings:  store.Settings(),
		Documents: store.Documents(),
	}, numbers, store.Locker(), billing.WithPublisher(publisher))

	registry := notify.NewRegistry()
	registry.Register(notify.LogSender{})

	deps := server.Deps{
		Billing: svc,
		Auth:    auth.NewService(nil, auth.NewMemorySessionStore(), "", time.Hour),
		Render:  render.HTML,
		Sender:  notify.New(registry, render.HTML, notify.LogChannel),
		Events:  publisher,
	}
	if assets != nil {
		deps.WebAsset = assets
	}
	return server.New(t.Context(), testConfig(), deps).Handler()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func TestHealthz(t *testing.T) {
	t.Parallel()

	rec := do(newServer(t, nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDemoTenantRoundTrip(t *testing.T) {
	t.Parallel()
	h := newServer(t, nil)

	rec := do(h, http.MethodPost, "/api/v1/clients", `{"nom":"Dupont","prenom":"Marie"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(h, http.MethodGet, "/api/v1/clients", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var clients []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clients))
	require.Len(t, clients, 1)
	assert.Equal(t, "Dupont", clients[0]["nom"])
}

func TestAuthMe_Anonymous(t *testing.T) {
	t.Parallel()

	rec := do(newServer(t, nil), http.MethodGet, "/api/v1/auth/me", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var me map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, false, me["authenticated"])
	assert.Equal(t, "demo", me["tenant"])
	assert.Equal(t, false, me["googleEnabled"])
}

func TestGoogleLogin_NotConfigured(t *testing.T) {
	t.Parallel()

	rec := do(newServer(t, nil), http.MethodGet, "/api/v1/auth/google/login", "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestWebSocket_RequiresAccount(t *testing.T) {
	t.Parallel()

	rec := do(newServer(t, nil), http.MethodGet, "/ws/seances", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	h := newServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/clients", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

// ---------------------------------------------------------------------------
// Frontend
// ---------------------------------------------------------------------------

func TestSPA(t *testing.T) {
	t.Parallel()

	h := newServer(t, fstest.MapFS{
		"index.html":           {Data: []byte("<html>cabinet</html>")},
		"app.js":               {Data: []byte("console.log(1)")},
		"assets/index-3f9a.js": {Data: []byte("export{}")},
	})

	tests := []struct {
		name      string
		path      string
		wantCode  int
		wantBody  string
		wantCache string
	}{
		{name: "root serves index", path: "/", wantCode: http.StatusOK, wantBody: "cabinet", wantCache: "no-cache"},
		{name: "asset served as is", path: "/app.js", wantCode: http.StatusOK, wantBody: "console.log"},
		{name: "hashed asset cached", path: "/assets/index-3f9a.js", wantCode: http.StatusOK, wantBody: "export", wantCache: "public, max-age=31536000, immutable"},
		{name: "client route falls back to index", path: "/seances/42", wantCode: http.StatusOK, wantBody: "cabinet", wantCache: "no-cache"},
		{name: "directory falls back to index", path: "/assets", wantCode: http.StatusOK, wantBody: "cabinet", wantCache: "no-cache"},
		{name: "unknown api path stays 404", path: "/api/v1/nope", wantCode: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := do(h, http.MethodGet, tc.path, "")
			assert.Equal(t, tc.wantCode, rec.Code)
			if tc.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tc.wantBody)
			}
			assert.Equal(t, tc.wantCache, rec.Header().Get("Cache-Control"))
		})
	}
}

func TestWebDir(t *testing.T) {
	t.Parallel()

	fsys, err := server.WebDir("")
	require.NoError(t, err)
	assert.Nil(t, fsys)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("ok"), 0o600))
	fsys, err = server.WebDir(dir)
	require.NoError(t, err)
	require.NotNil(t, fsys)

	_, err = server.WebDir(filepath.Join(dir, "index.html"))
	assert.ErrorContains(t, err, "not a directory")

	_, err = server.WebDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
