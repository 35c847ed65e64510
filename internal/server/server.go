package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	v1 "github.com/gosuda/cabinet/internal/api/v1"
	"github.com/gosuda/cabinet/internal/api/ws"
	"github.com/gosuda/cabinet/internal/config"
	"github.com/gosuda/cabinet/internal/server/middleware"
)

// Billing is everything the HTTP API needs from the billing core.
// *billing.Service satisfies this interface.
type Billing interface {
	v1.ClientService
	v1.TarifService
	v1.SeanceService
	v1.DocumentService
	v1.SettingsService
	v1.DashboardService
}

// Authenticator runs the login flow and resolves sessions.
// *auth.Service satisfies this interface.
type Authenticator interface {
	v1.AuthService
	middleware.SessionResolver
}

// Deps are the services the server routes to.
type Deps struct {
	Billing  Billing
	Auth     Authenticator
	Render   v1.Renderer
	Sender   v1.DocumentSender
	Events   ws.Subscriber
	WebAsset fs.FS // optional single-page frontend
}

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server with all routes wired. ctx bounds the rate limiter
// sweepers.
func New(ctx context.Context, cfg *config.Config, deps Deps) *Server {
	router := chi.NewRouter()

	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	router.Use(middleware.Session(cfg.Session.CookieName, deps.Auth))
	router.Use(middleware.RequestLogger())

	s := &Server{
		router: router,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	cookie := v1.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
		TTL:    cfg.Session.TTL,
	}

	router.Route("/api/v1", func(r chi.Router) {
		// Login endpoints, limited per address.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))

			authConfig := huma.DefaultConfig("Cabinet Auth API", "1.0.0")
			authConfig.Servers = []*huma.Server{{URL: "/api/v1"}}
			authConfig.OpenAPIPath = ""
			authConfig.DocsPath = ""
			authAPI := humachi.New(r, authConfig)
			registerAuthRoutes(authAPI, deps, cookie)
		})

		// Billing endpoints, limited per tenant.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(ctx, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))

			apiConfig := huma.DefaultConfig("Cabinet API", "1.0.0")
			apiConfig.Servers = []*huma.Server{{URL: "/api/v1"}}
			api := humachi.New(r, apiConfig)
			registerAPIRoutes(api, deps)
		})
	})

	router.Route("/ws", func(r chi.Router) {
		r.Use(middleware.RequireAccount())
		registerWSRoutes(r, ws.NewHub(deps.Events, cfg.Server.CORSOrigins...))
	})

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Registered last so API and WebSocket routes take priority.
	if deps.WebAsset != nil {
		router.NotFound(spaFileServer(deps.WebAsset).ServeHTTP)
		log.Info().Msg("server: serving frontend")
	}

	return s
}

// WebDir returns the frontend directory as a filesystem, or nil when dir
// is empty.
func WebDir(dir string) (fs.FS, error) {
	if dir == "" {
		return nil, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("server.WebDir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("server.WebDir: %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
