package okrs

import (
	"errors"
	"net/http"

	"github.com/aliuyar1234/okrlaunch/internal/apperrors"
	"github.com/aliuyar1234/okrlaunch/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// HandleGetLatest handles GET /api/okr/{userId}. An authenticated session
// takes precedence over the path parameter.
func HandleGetLatest(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := auth.GetUserID(r.Context())
		if target == "" {
			target = chi.URLParam(r, "userId")
		}

		result, err := svc.Latest(r.Context(), target)
		if err != nil {
			switch {
			case errors.Is(err, ErrUserIDRequired):
				apperrors.WriteBadRequest(w, r, "User ID is required")
			case errors.Is(err, ErrUserNotFound):
				apperrors.WriteNotFound(w, r, "User not found")
			case errors.Is(err, ErrOKRNotFound):
				apperrors.WriteNotFound(w, r, "OKR not found for user")
			default:
				log.Error().Err(err).Str("user_id", target).Msg("Failed to load OKRs")
				apperrors.WriteInternalError(w, r, "Internal server error")
			}
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, result)
	}
}
