package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/jeannegris/equora/pkg/jwtutil"
	"github.com/jeannegris/equora/pkg/response"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	sessionIDKey contextKey = "session_id"
	usernameKey  contextKey = "username"
)

// UserIDFromContext returns the authenticated account id set by one of the
// session guards.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// UsernameFromContext returns the JWT subject set by the bearer guard.
func UsernameFromContext(ctx context.Context) string {
	u, _ := ctx.Value(usernameKey).(string)
	return u
}

// SessionVerifier resolves a session id to an account id; empty means the
// session is missing, expired or stale.
type SessionVerifier interface {
	VerifySession(ctx context.Context, sessionID string) (string, error)
}

// AdminChecker reports whether an account id has admin rights.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// SessionGuard authenticates requests by session cookie. When checker is
// non-nil the account must also be an admin.
func SessionGuard(cookieName string, verifier SessionVerifier, checker AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string
			if c, err := r.Cookie(cookieName); err == nil {
				sessionID = c.Value
			}

			userID, err := verifier.VerifySession(r.Context(), sessionID)
			if err != nil {
				response.Error(w, http.StatusInternalServerError, "session lookup failed")
				return
			}
			if userID == "" {
				response.Error(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			if checker != nil {
				admin, err := checker.IsAdmin(r.Context(), userID)
				if err != nil {
					response.Error(w, http.StatusInternalServerError, "permission lookup failed")
					return
				}
				if !admin {
					response.Error(w, http.StatusForbidden, "admin privileges required")
					return
				}
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, sessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerGuard authenticates requests by JWT bearer token and stores the
// subject in the context.
func BearerGuard(signer *jwtutil.Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				response.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			username, err := signer.Verify(strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
