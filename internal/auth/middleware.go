package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/aliuyar1234/okrlaunch/internal/apperrors"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDContextKey is the context key for storing user ID
	UserIDContextKey contextKey = "user_id"

	// SourceContextKey records how the session was presented
	SourceContextKey contextKey = "auth_source"
)

// Source identifies where a session token was read from.
type Source string

const (
	SourceNone   Source = ""
	SourceBearer Source = "bearer"
	SourceCookie Source = "cookie"
)

// AuthMiddleware reads a session token from the Authorization header, then
// from the session cookie, and injects the user ID into context. Invalid
// tokens are ignored and the request continues unauthenticated.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, source := bearerToken(r), SourceBearer
			if token == "" {
				token, source = GetSessionCookie(r), SourceCookie
			}
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := ValidateToken(token, secret)
			if err != nil {
				log.Debug().Err(err).Str("source", string(source)).Msg("Invalid session token")
				if source == SourceCookie {
					ClearSessionCookie(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID(), source)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth is middleware that requires authentication
// Returns 401 if the user is not authenticated
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserID(r.Context()) == "" {
			apperrors.WriteUnauthorized(w, r, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCSRFForCookies enforces the double-submit token on mutating
// requests authenticated by cookie. Bearer requests are not exposed to CSRF.
func RequireCSRFForCookies(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			if GetSource(r.Context()) == SourceCookie {
				if err := ValidateCSRF(r); err != nil {
					log.Warn().
						Err(err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Str("remote_addr", r.RemoteAddr).
						Msg("CSRF validation failed")

					apperrors.WriteForbidden(w, r, "Invalid CSRF token")
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// WithUserID returns a context carrying an authenticated user.
func WithUserID(ctx context.Context, userID string, source Source) context.Context {
	ctx = context.WithValue(ctx, UserIDContextKey, userID)
	return context.WithValue(ctx, SourceContextKey, source)
}

// GetUserID retrieves the user ID from the request context
// Returns "" if no user is authenticated
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDContextKey).(string)
	return userID
}

// GetSource returns how the current session token was presented.
func GetSource(ctx context.Context) Source {
	source, _ := ctx.Value(SourceContextKey).(Source)
	return source
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
