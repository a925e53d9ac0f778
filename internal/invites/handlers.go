package invites

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aliuyar1234/okrlaunch/internal/apperrors"
	"github.com/aliuyar1234/okrlaunch/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type AcceptRequest struct {
	Token string `json:"token"`
}

type UpdateDraftRequest struct {
	OKRs []domain.Objective `json:"okrs"`
}

// HandleValidate handles GET /api/invite/{token}
func HandleValidate(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := svc.Validate(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenRequired):
				apperrors.WriteBadRequest(w, r, "Invitation token is required")
			case errors.Is(err, ErrNotFound):
				apperrors.WriteNotFound(w, r, MsgNotFound)
			default:
				log.Error().Err(err).Msg("Failed to validate invitation")
				apperrors.WriteInternalError(w, r, "Internal server error")
			}
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, data)
	}
}

// HandleAccept handles POST /api/invite/accept
func HandleAccept(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AcceptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		req.Token = strings.TrimSpace(req.Token)
		if req.Token == "" {
			apperrors.WriteBadRequest(w, r, "Invitation token is required")
			return
		}

		result, err := svc.Accept(r.Context(), req.Token)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidToken):
				apperrors.WriteBadRequest(w, r, MsgInvalidToken)
			case errors.Is(err, ErrAlreadyAccepted):
				apperrors.WriteBadRequest(w, r, MsgAlreadyAccepted)
			case errors.Is(err, ErrFinalizeFailed):
				apperrors.WriteInternalError(w, r, MsgFinalizeFailed)
			case errors.Is(err, ErrAcceptFailed):
				log.Error().Err(err).Msg("Failed to accept invitation")
				apperrors.WriteInternalError(w, r, MsgAcceptFailed)
			default:
				log.Error().Err(err).Msg("Failed to accept invitation")
				apperrors.WriteInternalError(w, r, "Internal server error")
			}
			return
		}

		apperrors.WriteMessage(w, r, http.StatusOK, result.Message, nil)
	}
}

// HandleUpdateDraft handles PUT /api/invite/{token}/okrs
func HandleUpdateDraft(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateDraftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		result, err := svc.UpdateDraftByToken(r.Context(), chi.URLParam(r, "token"), req.OKRs)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenRequired):
				apperrors.WriteBadRequest(w, r, "Invitation token is required")
			case errors.Is(err, ErrNotFound):
				apperrors.WriteNotFound(w, r, MsgNotFound)
			case errors.Is(err, ErrInvalidOKRs):
				apperrors.WriteBadRequest(w, r, err.Error())
			default:
				log.Error().Err(err).Msg("Failed to update draft OKRs")
				apperrors.WriteInternalError(w, r, "Failed to update OKRs")
			}
			return
		}

		apperrors.WriteMessage(w, r, http.StatusOK, result.Message, map[string]any{
			"rows_affected": result.RowsAffected,
		})
	}
}
