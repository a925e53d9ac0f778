package audit

import (
	"context"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/domain"
	"github.com/aliuyar1234/okrlaunch/internal/store"
	"github.com/rs/zerolog/log"
)

const (
	EventUserSignedIn          = "user.signed_in"
	EventInvitationCreated     = "invitation.created"
	EventInvitationAccepted    = "invitation.accepted"
	EventDraftUpdated          = "okrs.draft_updated"
	EventOKRsFinalized         = "okrs.finalized"
	EventReminderSettingsSaved = "reminders.settings_updated"
	EventRemindersDispatched   = "reminders.dispatched"
	EventTeamInvited           = "team.invited"
)

// Writer records audit events. Failures are logged and returned but callers
// treat them as non-fatal.
type Writer struct {
	log store.AuditLog
}

func NewWriter(l store.AuditLog) *Writer {
	return &Writer{log: l}
}

// LogParams contains parameters for logging an audit event.
type LogParams struct {
	ActorUserID string
	Action      string
	Meta        map[string]interface{}
}

func (w *Writer) Log(ctx context.Context, params LogParams) error {
	if w == nil || w.log == nil {
		return nil
	}

	var actor *string
	if params.ActorUserID != "" {
		actor = &params.ActorUserID
	}

	err := w.log.Insert(ctx, domain.AuditEvent{
		ActorUserID: actor,
		Action:      params.Action,
		Meta:        params.Meta,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("action", params.Action).Msg("Failed to write audit log")
		return err
	}

	log.Info().
		Str("action", params.Action).
		Str("actor_user_id", params.ActorUserID).
		Msg("Audit event logged")

	return nil
}

func (w *Writer) LogUserSignedIn(ctx context.Context, userID, email string) error {
	return w.Log(ctx, LogParams{
		ActorUserID: userID,
		Action:      EventUserSignedIn,
		Meta: map[string]interface{}{
			"email": email,
		},
	})
}

func (w *Writer) LogInvitationCreated(ctx context.Context, inviterID, inviteeID, email string) error {
	return w.Log(ctx, LogParams{
		ActorUserID: inviterID,
		Action:      EventInvitationCreated,
		Meta: map[string]interface{}{
			"invitee_user_id": inviteeID,
			"email":           email,
		},
	})
}

// LogInvitationAccepted records an accept. tokenSource tells invitations
// minted by this service apart from those minted by the invite workflow.
func (w *Writer) LogInvitationAccepted(ctx context.Context, userID, tokenSource string, finalized int64) error {
	return w.Log(ctx, LogParams{
		ActorUserID: userID,
		Action:      EventInvitationAccepted,
		Meta: map[string]interface{}{
			"finalized_rows": finalized,
			"token_source":   tokenSource,
		},
	})
}

func (w *Writer) LogDraftUpdated(ctx context.Context, userID string, objectives int, rows int64) error {
	return w.Log(ctx, LogParams{
		ActorUserID: userID,
		Action:      EventDraftUpdated,
		Meta: map[string]interface{}{
			"objectives": objectives,
			"rows":       rows,
		},
	})
}

func (w *Writer) LogOKRsFinalized(ctx context.Context, userID string, rows int64) error {
	return w.Log(ctx, LogParams{
		ActorUserID: userID,
		Action:      EventOKRsFinalized,
		Meta: map[string]interface{}{
			"rows": rows,
		},
	})
}

func (w *Writer) LogReminderSettingsSaved(ctx context.Context, userID string, settings domain.ReminderSettings) error {
	return w.Log(ctx, LogParams{
		ActorUserID: userID,
		Action:      EventReminderSettingsSaved,
		Meta: map[string]interface{}{
			"reminder_enabled":   settings.Enabled,
			"reminder_frequency": string(settings.Frequency),
			"reminder_day":       settings.Day,
			"reminder_time":      settings.Time,
		},
	})
}

func (w *Writer) LogRemindersDispatched(ctx context.Context, trigger string, sentCount int) error {
	return w.Log(ctx, LogParams{
		Action: EventRemindersDispatched,
		Meta: map[string]interface{}{
			"trigger":    trigger,
			"sent_count": sentCount,
		},
	})
}

func (w *Writer) LogTeamInvited(ctx context.Context, leaderID string, invited int, emailsSent bool) error {
	return w.Log(ctx, LogParams{
		ActorUserID: leaderID,
		Action:      EventTeamInvited,
		Meta: map[string]interface{}{
			"invited":     invited,
			"emails_sent": emailsSent,
		},
	})
}
