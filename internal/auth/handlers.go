package auth

import (
	"errors"
	"net/http"

	"github.com/aliuyar1234/okrlaunch/internal/apperrors"
	"github.com/rs/zerolog/log"
)

// SessionResponse describes the signed-in user.
type SessionResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// HandleLogin starts OAuth sign-in and redirects to the provider.
func HandleLogin(svc *OAuthService, cookies CookieOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authURL, err := svc.Begin(r.Context(), r.URL.Query().Get("next"))
		if err != nil {
			if errors.Is(err, ErrOAuthDisabled) {
				apperrors.WriteNotFound(w, r, "Sign-in is not configured")
				return
			}
			log.Error().Err(err).Msg("Failed to start sign-in")
			apperrors.WriteInternalError(w, r, "Failed to start sign-in")
			return
		}

		// Seed the CSRF cookie so the client can make mutating calls after the redirect.
		if GetCSRFCookie(r) == "" {
			if token, err := GenerateCSRFToken(); err == nil {
				cookies.SetCSRF(w, token)
			}
		}

		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// HandleCallback completes OAuth sign-in, sets the session cookie and
// redirects to the stored next path.
func HandleCallback(svc *OAuthService, cookies CookieOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if providerErr := q.Get("error"); providerErr != "" {
			log.Warn().Str("error", providerErr).Msg("Identity provider returned an error")
			apperrors.WriteUnauthorized(w, r, "Sign-in was cancelled or denied")
			return
		}

		result, err := svc.Complete(r.Context(), q.Get("code"), q.Get("state"))
		if err != nil {
			switch {
			case errors.Is(err, ErrOAuthDisabled):
				apperrors.WriteNotFound(w, r, "Sign-in is not configured")
			case errors.Is(err, ErrInvalidState):
				apperrors.WriteBadRequest(w, r, "Invalid or expired sign-in request")
			case errors.Is(err, ErrProviderFailure):
				log.Warn().Err(err).Msg("Sign-in failed at identity provider")
				apperrors.WriteBadGateway(w, r, "Identity provider request failed")
			default:
				log.Error().Err(err).Msg("Failed to complete sign-in")
				apperrors.WriteInternalError(w, r, "Failed to complete sign-in")
			}
			return
		}

		cookies.SetSession(w, result.Token)

		log.Info().
			Str("user_id", result.User.ID).
			Str("email", result.User.Email).
			Msg("User signed in successfully")

		http.Redirect(w, r, result.Next, http.StatusFound)
	}
}

// HandleLogout clears the session cookie.
func HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ClearSessionCookie(w)

		if userID := GetUserID(r.Context()); userID != "" {
			log.Info().Str("user_id", userID).Msg("User logged out")
		}

		apperrors.WriteMessage(w, r, http.StatusOK, "Logged out", nil)
	}
}
