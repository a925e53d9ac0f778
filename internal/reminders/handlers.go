package reminders

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/apperrors"
	"github.com/aliuyar1234/okrlaunch/internal/auth"
	"github.com/aliuyar1234/okrlaunch/internal/validation"
	"github.com/aliuyar1234/okrlaunch/internal/workflow"
	"github.com/rs/zerolog/log"
)

// CronResponse is the body of a successful cron dispatch.
type CronResponse struct {
	Success   bool                          `json:"success"`
	Timestamp string                        `json:"timestamp"`
	Result    *workflow.SendRemindersResult `json:"result"`
	SentCount int                           `json:"sent_count"`
	Message   string                        `json:"message"`
}

type cronFailure struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

// HandleUpdateSettings handles POST /api/user/reminder-settings. A signed-in
// caller always updates their own settings.
func HandleUpdateSettings(svc *SettingsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateSettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		if sessionUser := auth.GetUserID(r.Context()); sessionUser != "" {
			req.UserID = sessionUser
		}

		user, err := svc.Update(r.Context(), req)
		if err != nil {
			switch {
			case errors.Is(err, ErrUserIDRequired),
				errors.Is(err, validation.ErrInvalidFrequency),
				errors.Is(err, validation.ErrInvalidDay),
				errors.Is(err, validation.ErrInvalidTime):
				apperrors.WriteBadRequest(w, r, err.Error())
			default:
				log.Error().Err(err).Msg("Failed to update reminder settings")
				apperrors.WriteInternalError(w, r, "Failed to update reminder settings")
			}
			return
		}

		// data is null when no user matched.
		apperrors.WriteMessage(w, r, http.StatusOK, "Reminder settings updated successfully", user)
	}
}

// HandleCron handles GET /api/cron/send-okr-reminders. The caller presents
// the shared secret as a bearer token.
func HandleCron(d *Dispatcher, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if secret == "" {
			log.Error().Msg("Cron endpoint called but CRON_SECRET is not configured")
			apperrors.WriteInternalError(w, r, "Server configuration error")
			return
		}

		expected := []byte("Bearer " + secret)
		if subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), expected) != 1 {
			apperrors.WriteUnauthorized(w, r, "Unauthorized")
			return
		}

		result, err := d.Run(r.Context(), TriggerHTTP)
		now := time.Now().UTC().Format(time.RFC3339Nano)
		if err != nil {
			apperrors.WriteJSON(w, http.StatusInternalServerError, cronFailure{
				Success:   false,
				Error:     err.Error(),
				Timestamp: now,
				RequestID: apperrors.GetRequestID(r.Context()),
			})
			return
		}

		apperrors.WriteJSON(w, http.StatusOK, CronResponse{
			Success:   true,
			Timestamp: now,
			Result:    result.Result,
			SentCount: result.SentCount,
			Message:   result.Message,
		})
	}
}
