package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/cabinet/internal/auth"
	"github.com/gosuda/cabinet/internal/tenant"
)

// SessionResolver maps a session id to its tenant. *auth.Service satisfies
// this interface.
type SessionResolver interface {
	Resolve(ctx context.Context, id string) (tenant.ID, *auth.Session)
}

// Session resolves the caller's tenant from the session cookie, or from a
// Bearer token carrying the same opaque id. Requests without a live session
// are served as the demo tenant.
func Session(cookieName string, resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			id := sessionID(r, cookieName)
			if id == "" {
				next.ServeHTTP(w, r.WithContext(WithTenant(ctx, tenant.Demo)))
				return
			}

			t, sess := resolver.Resolve(ctx, id)
			if sess == nil {
				log.Debug().Str("path", r.URL.Path).Msg("middleware: session did not resolve, serving demo")
			}
			ctx = context.WithValue(ctx, ContextKeySessionID, id)
			ctx = context.WithValue(ctx, ContextKeySession, sess)
			next.ServeHTTP(w, r.WithContext(WithTenant(ctx, t)))
		})
	}
}

func sessionID(r *http.Request, cookieName string) string {
	if tok := extractBearer(r); tok != "" {
		return tok
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
