package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/spendboard/internal/api/apierr"
	"github.com/mcoot/spendboard/internal/services/auth"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"
	callerContextKey  contextKey = "caller"
)

// Callers recorded on trigger requests
const (
	CallerAdmin     = "admin"
	CallerScheduler = "scheduler"
)

// Auth creates middleware that requires an admin session
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := authService.ValidateSession(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			ctx = context.WithValue(ctx, callerContextKey, CallerAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Trigger creates middleware for batch triggers. It accepts either an admin
// session or the shared trigger secret as the bearer token.
func Trigger(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			ctx := r.Context()
			if authService.CheckTriggerSecret(token) {
				ctx = context.WithValue(ctx, callerContextKey, CallerScheduler)
			} else {
				session, err := authService.ValidateSession(token)
				if err != nil {
					apierr.WriteError(w, apierr.NewUnauthorizedError())
					return
				}
				ctx = context.WithValue(ctx, sessionContextKey, session)
				ctx = context.WithValue(ctx, callerContextKey, CallerAdmin)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Fall back to cookie
	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value
	}

	return ""
}

// Token returns the bearer token of the request, if any
func Token(r *http.Request) string {
	return extractToken(r)
}

// GetSession returns the admin session from the request context
func GetSession(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionContextKey).(*auth.Session)
	return session
}

// GetCaller returns who authorised the request ("admin" or "scheduler")
func GetCaller(ctx context.Context) string {
	caller, _ := ctx.Value(callerContextKey).(string)
	return caller
}
