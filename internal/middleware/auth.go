package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nikhil/chatrelay/internal/response"
)

type ContextKey string

const UserContextKey ContextKey = "currentUser"

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
	ParseToken(token string) (int64, error)
}

// UserIDFromContext returns the user id bound by the auth middleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserContextKey).(int64)
	return id, ok
}

func withUser(r *http.Request, userID int64) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), UserContextKey, userID))
}

// AuthMiddleware binds the user of an Authorization bearer token to the
// request. Requests without a header pass through unbound; a nil parser
// disables the check entirely.
func AuthMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if tokens == nil || authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := tokens.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			next.ServeHTTP(w, withUser(r, userID))
		})
	}
}

// WebSocketAuthMiddleware reads the token from the "token" query parameter,
// since browsers cannot set headers on the upgrade request. With a nil parser
// connections stay unbound.
func WebSocketAuthMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens == nil {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr := r.URL.Query().Get("token")
			if tokenStr == "" {
				http.Error(w, "Missing auth token", http.StatusUnauthorized)
				return
			}
			userID, err := tokens.ParseToken(tokenStr)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, withUser(r, userID))
		})
	}
}

func ResponseWrapperMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
