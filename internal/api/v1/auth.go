package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/cabinet/internal/auth"
	"github.com/gosuda/cabinet/internal/server/middleware"
	"github.com/gosuda/cabinet/internal/tenant"
)

// CookieConfig shapes the session cookie set after login.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

type MeInput struct{}

type MeOutput struct {
	Body struct {
		Authenticated bool      `json:"authenticated"`
		Tenant        tenant.ID `json:"tenant"`
		Email         string    `json:"email,omitempty"`
		Name          string    `json:"name,omitempty"`
		GoogleEnabled bool      `json:"googleEnabled"`
	}
}

type LoginInput struct {
	ReturnTo string `query:"returnTo" doc:"Local path to land on after login"`
}

type RedirectOutput struct {
	Status    int
	Location  string `header:"Location"`
	SetCookie string `header:"Set-Cookie"`
}

type CallbackInput struct {
	Code  string `query:"code"`
	State string `query:"state"`
	Error string `query:"error"`
}

type LogoutInput struct{}

type LogoutOutput struct {
	SetCookie string `header:"Set-Cookie"`
}

func RegisterAuthRoutes(api huma.API, authSvc AuthService, settings SettingsService, cookie CookieConfig) {
	huma.Register(api, huma.Operation{
		OperationID: "auth-me",
		Method:      http.MethodGet,
		Path:        "/auth/me",
		Summary:     "Describe the current caller",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, _ *MeInput) (*MeOutput, error) {
		out := &MeOutput{}
		out.Body.Tenant = middleware.TenantFromContext(ctx)
		out.Body.GoogleEnabled = authSvc.Enabled()
		if sess, ok := middleware.SessionFromContext(ctx); ok {
			out.Body.Authenticated = true
			out.Body.Email = sess.Email
			out.Body.Name = sess.Name
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auth-google-login",
		Method:      http.MethodGet,
		Path:        "/auth/google/login",
		Summary:     "Redirect to the Google consent screen",
		Tags:        []string{"Auth"},
	}, func(_ context.Context, input *LoginInput) (*RedirectOutput, error) {
		if !authSvc.Enabled() {
			return nil, huma.Error501NotImplemented("google login is not configured")
		}
		url, err := authSvc.LoginURL(safeReturnTo(input.ReturnTo))
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to start login", err)
		}
		return &RedirectOutput{Status: http.StatusFound, Location: url}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auth-google-callback",
		Method:      http.MethodGet,
		Path:        "/auth/google/callback",
		Summary:     "Finish the Google login",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *CallbackInput) (*RedirectOutput, error) {
		if !authSvc.Enabled() {
			return nil, huma.Error501NotImplemented("google login is not configured")
		}
		if input.Error != "" {
			return nil, huma.Error400BadRequest("google login was refused: " + input.Error)
		}
		if input.Code == "" || input.State == "" {
			return nil, huma.Error400BadRequest("code and state are required")
		}

		sess, returnTo, err := authSvc.Complete(ctx, input.Code, input.State)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidState) {
				return nil, huma.Error400BadRequest("invalid or expired login attempt")
			}
			return nil, huma.Error502BadGateway("google login failed", err)
		}

		if err := settings.RecordOAuth(ctx, sess.Tenant, sess.Email, sess.Name, sess.Scopes); err != nil {
			log.Warn().Err(err).Str("tenant", sess.Tenant.String()).Msg("auth: oauth summary not recorded")
		}

		return &RedirectOutput{
			Status:    http.StatusFound,
			Location:  safeReturnTo(returnTo),
			SetCookie: sessionCookie(cookie, sess.ID, int(cookie.TTL.Seconds())),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auth-logout",
		Method:      http.MethodPost,
		Path:        "/auth/logout",
		Summary:     "End the current session",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, _ *LogoutInput) (*LogoutOutput, error) {
		if id, ok := middleware.SessionIDFromContext(ctx); ok {
			if err := authSvc.Logout(ctx, id); err != nil {
				return nil, huma.Error500InternalServerError("failed to log out", err)
			}
		}
		return &LogoutOutput{SetCookie: sessionCookie(cookie, "", -1)}, nil
	})
}

func sessionCookie(cfg CookieConfig, value string, maxAge int) string {
	c := &http.Cookie{
		Name:     cfg.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return c.String()
}

// safeReturnTo keeps post-login redirects on this site.
func safeReturnTo(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, `/\`) {
		return "/"
	}
	return p
}
