package invites

import (
	"errors"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/domain"
)

var (
	ErrTokenRequired   = errors.New("invitation token is required")
	ErrNotFound        = errors.New("invitation not found")
	ErrInvalidToken    = errors.New("invalid invitation token")
	ErrAlreadyAccepted = errors.New("invitation already accepted")
	ErrAcceptFailed    = errors.New("failed to accept invitation")
	ErrFinalizeFailed  = errors.New("failed to finalize OKRs")
	ErrUserIDRequired  = errors.New("user id is required")
	ErrInvalidOKRs     = errors.New("invalid OKRs")
	ErrNotAccepted     = errors.New("invitation not accepted")
)

// Messages returned to clients for each outcome.
const (
	MsgAccepted        = "Invitation accepted successfully"
	MsgInvalidToken    = "Invalid invitation token"
	MsgAlreadyAccepted = "Invitation already accepted"
	MsgAcceptFailed    = "Failed to accept invitation"
	MsgFinalizeFailed  = "Failed to finalize OKRs"
	MsgDraftUpdated    = "OKRs updated successfully"
	MsgNotFound        = "Invalid or expired invitation token"
)

// InvitedUser is the invitee as shown on the invitation page.
type InvitedUser struct {
	ID                   string     `json:"id"`
	Email                string     `json:"email"`
	Name                 string     `json:"name"`
	Role                 string     `json:"role"`
	InvitationToken      *string    `json:"invitation_token"`
	InvitationSentAt     *time.Time `json:"invitation_sent_at"`
	InvitationAcceptedAt *time.Time `json:"invitation_accepted_at"`
}

// Leader is the inviter as shown on the invitation page.
type Leader struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// InvitationData is the validated view of a pending invitation.
type InvitationData struct {
	User   InvitedUser          `json:"user"`
	OKR    domain.OKRGeneration `json:"okr"`
	Leader *Leader              `json:"leader"`
}

type AcceptResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	FinalizedRows int64  `json:"-"`
}

type UpdateDraftResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	RowsAffected int64  `json:"rows_affected"`
}

// CreateParams describes an invitation created outside the invite workflow.
type CreateParams struct {
	InviterID          string
	Email              string
	Name               string
	Role               string
	WebsiteURL         string
	CompanyName        string
	PlanningPeriod     string
	StrategicNarrative string
	OKRs               []domain.Objective
}

type CreateResult struct {
	User  domain.User          `json:"user"`
	OKR   domain.OKRGeneration `json:"okr"`
	Token string               `json:"token"`
}

func invitedUser(u domain.User) InvitedUser {
	return InvitedUser{
		ID:                   u.ID,
		Email:                u.Email,
		Name:                 u.Name,
		Role:                 u.Role,
		InvitationToken:      u.InvitationToken,
		InvitationSentAt:     u.InvitationSentAt,
		InvitationAcceptedAt: u.InvitationAcceptedAt,
	}
}
