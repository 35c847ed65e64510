package middleware

import (
	"net/http"
)

// RequireAccount rejects requests served as the demo tenant. It guards the
// operations that act on a real account, such as sending email.
func RequireAccount() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if TenantFromContext(r.Context()).IsDemo() {
				http.Error(w, `{"title":"Forbidden","status":403,"detail":"sign in required"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
