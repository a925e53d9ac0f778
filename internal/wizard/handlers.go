package wizard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aliuyar1234/okrlaunch/internal/apperrors"
	"github.com/aliuyar1234/okrlaunch/internal/auth"
	"github.com/rs/zerolog/log"
)

// ApplyRequest carries a single action or a batch applied in order.
type ApplyRequest struct {
	Action
	Actions []Action `json:"actions,omitempty"`
}

// HandleGet handles GET /api/wizard
func HandleGet(repo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := repo.Load(r.Context(), auth.GetUserID(r.Context()))
		if err != nil {
			log.Error().Err(err).Msg("Failed to load wizard state")
			apperrors.WriteInternalError(w, r, "Failed to load wizard state")
			return
		}
		apperrors.WriteSuccess(w, r, http.StatusOK, s)
	}
}

// HandleApply handles POST /api/wizard/actions
func HandleApply(repo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ApplyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		actions := req.Actions
		if req.Type != "" {
			actions = append([]Action{req.Action}, actions...)
		}
		if len(actions) == 0 {
			apperrors.WriteBadRequest(w, r, "At least one action is required")
			return
		}

		s, err := repo.Apply(r.Context(), auth.GetUserID(r.Context()), actions...)
		if err != nil {
			if errors.Is(err, ErrUnknownAction) || errors.Is(err, ErrInvalidPayload) {
				apperrors.WriteBadRequest(w, r, err.Error())
				return
			}
			log.Error().Err(err).Msg("Failed to apply wizard actions")
			apperrors.WriteInternalError(w, r, "Failed to update wizard state")
			return
		}
		apperrors.WriteSuccess(w, r, http.StatusOK, s)
	}
}
