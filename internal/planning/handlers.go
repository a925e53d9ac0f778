package planning

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aliuyar1234/okrlaunch/internal/apperrors"
	"github.com/aliuyar1234/okrlaunch/internal/auth"
	"github.com/aliuyar1234/okrlaunch/internal/validation"
	"github.com/aliuyar1234/okrlaunch/internal/workflow"
	"github.com/rs/zerolog/log"
)

type ResearchRequest struct {
	WebsiteURL string `json:"website_url"`
}

// HandleResearch handles POST /api/flows/research
func HandleResearch(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResearchRequest
		if !decode(w, r, &req) {
			return
		}
		result, err := svc.Research(r.Context(), req.WebsiteURL)
		if err != nil {
			writeFlowError(w, r, "research", err)
			return
		}
		apperrors.WriteSuccess(w, r, http.StatusOK, result)
	}
}

// HandleGenerate handles POST /api/flows/generate
func HandleGenerate(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req workflow.GenerateOKRsInput
		if !decode(w, r, &req) {
			return
		}
		result, err := svc.Generate(r.Context(), req)
		if err != nil {
			writeFlowError(w, r, "generate", err)
			return
		}
		apperrors.WriteSuccess(w, r, http.StatusOK, result)
	}
}

// HandleRegenerate handles POST /api/flows/regenerate
func HandleRegenerate(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req workflow.RegenerateOKRsInput
		if !decode(w, r, &req) {
			return
		}
		result, err := svc.Regenerate(r.Context(), req)
		if err != nil {
			writeFlowError(w, r, "regenerate", err)
			return
		}
		apperrors.WriteSuccess(w, r, http.StatusOK, result)
	}
}

// HandleSave handles POST /api/flows/save. The plan is always saved for the
// session user.
func HandleSave(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req workflow.SaveOKRsInput
		if !decode(w, r, &req) {
			return
		}
		result, err := svc.Save(r.Context(), auth.GetUserID(r.Context()), req)
		if err != nil {
			writeFlowError(w, r, "save", err)
			return
		}
		apperrors.WriteSuccess(w, r, http.StatusOK, result)
	}
}

// HandleInviteTeam handles POST /api/flows/invite-team
func HandleInviteTeam(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req InviteTeamRequest
		if !decode(w, r, &req) {
			return
		}
		result, err := svc.InviteTeam(r.Context(), auth.GetUserID(r.Context()), req)
		if err != nil {
			writeFlowError(w, r, "invite-team", err)
			return
		}
		apperrors.WriteMessage(w, r, http.StatusOK, result.Message, result)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		apperrors.WriteBadRequest(w, r, "Invalid request body")
		return false
	}
	return true
}

func writeFlowError(w http.ResponseWriter, r *http.Request, flow string, err error) {
	switch {
	case errors.Is(err, validation.ErrInvalidURL),
		errors.Is(err, validation.ErrInvalidObjectives),
		errors.Is(err, ErrMissingField),
		errors.Is(err, ErrNoTeamMembers),
		errors.Is(err, ErrInvalidTeamMember):
		apperrors.WriteBadRequest(w, r, err.Error())
	case errors.Is(err, ErrLeaderNotFound):
		apperrors.WriteNotFound(w, r, "User not found")
	case errors.Is(err, workflow.ErrWorkflowNotConfigured):
		log.Error().Err(err).Str("flow", flow).Msg("Workflow is not configured")
		apperrors.WriteInternalError(w, r, "Server configuration error")
	case errors.Is(err, ErrInviteRejected):
		apperrors.WriteBadGateway(w, r, err.Error())
	case errors.Is(err, workflow.ErrGatewayFailure):
		apperrors.WriteBadGateway(w, r, "Workflow request failed")
	default:
		log.Error().Err(err).Str("flow", flow).Msg("Planning flow failed")
		apperrors.WriteInternalError(w, r, "Internal server error")
	}
}
