package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/caretaker-api/internal/infrastructure/jwt"
)

type contextKey string

const sessionKey contextKey = "session_id"

// Auth returns middleware that validates the Bearer session token and injects
// the session id into the request context.
func Auth(provider *jwtinfra.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := provider.Verify(tokenStr)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HeaderAuth reads the session id straight from the X-Session-ID header.
// Fallback for deployments without a signing keypair (local development).
func HeaderAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := r.Header.Get("X-Session-ID")
			if sid == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing X-Session-ID header")
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext extracts the authenticated session id from the request context.
func SessionFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionKey).(string)
	return sid, ok && sid != ""
}
