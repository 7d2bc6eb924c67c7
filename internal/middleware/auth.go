package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/galleria/service/internal/response"
)

// SessionCookie is the name of the HttpOnly cookie carrying the session token.
const SessionCookie = "gallery_session"

// contextKey is an unexported type for context keys in this package.
type contextKey string

// userIDKey is the context key for the authenticated user's id.
const userIDKey contextKey = "userID"

// Resolver resolves an opaque session token to a user id.
type Resolver interface {
	Resolve(ctx context.Context, token string) (int64, error)
}

// UserID extracts the authenticated user's id from the request context.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// TokenFromRequest extracts the session token from the session cookie, or
// from an Authorization Bearer header for non-browser clients.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// RequireAuth returns middleware for API routes: a missing or invalid session
// yields a structured 401 response.
func RequireAuth(sessions Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := sessions.Resolve(r.Context(), TokenFromRequest(r))
			if err != nil {
				response.Unauthorized(w, "authentication required")
				return
			}
			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
		})
	}
}

// RequirePage returns middleware for page routes: a missing or invalid
// session redirects the browser to the login page.
func RequirePage(sessions Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := sessions.Resolve(r.Context(), TokenFromRequest(r))
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
		})
	}
}

func withUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
