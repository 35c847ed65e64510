package middleware

import (
	"context"

	"github.com/gosuda/cabinet/internal/auth"
	"github.com/gosuda/cabinet/internal/tenant"
)

type contextKey string

const (
	ContextKeyTenant    contextKey = "tenant"
	ContextKeySession   contextKey = "session"
	ContextKeySessionID contextKey = "session_id"
)

// TenantFromContext returns the request tenant. A request that never went
// through Session resolves to the demo tenant.
func TenantFromContext(ctx context.Context) tenant.ID {
	v, ok := ctx.Value(ContextKeyTenant).(tenant.ID)
	if !ok || v == "" {
		return tenant.Demo
	}
	return v
}

func SessionFromContext(ctx context.Context) (*auth.Session, bool) {
	v, ok := ctx.Value(ContextKeySession).(*auth.Session)
	return v, ok && v != nil
}

// SessionIDFromContext returns the raw session id the client presented,
// whether or not it resolved.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeySessionID).(string)
	return v, ok && v != ""
}

// WithTenant returns a copy of ctx carrying t.
func WithTenant(ctx context.Context, t tenant.ID) context.Context {
	return context.WithValue(ctx, ContextKeyTenant, t)
}
