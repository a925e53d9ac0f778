package planning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aliuyar1234/okrlaunch/internal/audit"
	"github.com/aliuyar1234/okrlaunch/internal/domain"
	"github.com/aliuyar1234/okrlaunch/internal/store"
	"github.com/aliuyar1234/okrlaunch/internal/validation"
	"github.com/aliuyar1234/okrlaunch/internal/workflow"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoTeamMembers     = errors.New("at least one team member with name, email and role is required")
	ErrInvalidTeamMember = errors.New("every team member needs a name, a valid email and a role")
	ErrLeaderNotFound    = errors.New("leader not found")
	ErrInviteRejected    = errors.New("invitations were not created")
	ErrMissingField      = errors.New("missing required field")
)

// Workflows is the subset of the workflow gateway the planning flows use.
type Workflows interface {
	ResearchCompany(ctx context.Context, websiteURL string) (*workflow.ResearchCompanyResult, error)
	GenerateOKRs(ctx context.Context, in workflow.GenerateOKRsInput) (*workflow.GenerateOKRsResult, error)
	RegenerateOKRs(ctx context.Context, in workflow.RegenerateOKRsInput) (*workflow.GenerateOKRsResult, error)
	SaveOKRs(ctx context.Context, in workflow.SaveOKRsInput) (*workflow.SaveOKRsResult, error)
	InviteTeamMembers(ctx context.Context, in workflow.InviteTeamMembersInput) (*workflow.InviteTeamMembersResult, error)
	SendInvitationEmails(ctx context.Context, in workflow.SendInvitesInput) (*workflow.SendInvitesResult, error)
}

// Service runs the leader's planning flows on behalf of a signed-in user.
type Service struct {
	flows   Workflows
	users   store.Users
	auditor *audit.Writer
	baseURL string
}

func NewService(flows Workflows, users store.Users, auditor *audit.Writer, baseURL string) *Service {
	return &Service{
		flows:   flows,
		users:   users,
		auditor: auditor,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *Service) Research(ctx context.Context, websiteURL string) (*workflow.ResearchCompanyResult, error) {
	normalized, err := validation.NormalizeWebsiteURL(websiteURL)
	if err != nil {
		return nil, err
	}
	return s.flows.ResearchCompany(ctx, normalized)
}

func (s *Service) Generate(ctx context.Context, in workflow.GenerateOKRsInput) (*workflow.GenerateOKRsResult, error) {
	if strings.TrimSpace(in.UserRole) == "" {
		return nil, fmt.Errorf("%w: user_role", ErrMissingField)
	}
	if strings.TrimSpace(in.PlanningPeriod) == "" {
		return nil, fmt.Errorf("%w: planning_period", ErrMissingField)
	}
	return s.flows.GenerateOKRs(ctx, in)
}

func (s *Service) Regenerate(ctx context.Context, in workflow.RegenerateOKRsInput) (*workflow.GenerateOKRsResult, error) {
	if strings.TrimSpace(in.EditedNarrative) == "" {
		return nil, fmt.Errorf("%w: edited_narrative", ErrMissingField)
	}
	return s.flows.RegenerateOKRs(ctx, in)
}

// Save persists the plan for userID. Email and name default to the stored
// user's values.
func (s *Service) Save(ctx context.Context, userID string, in workflow.SaveOKRsInput) (*workflow.SaveOKRsResult, error) {
	if err := validation.ValidateObjectives(in.OKRPlan.Objectives); err != nil {
		return nil, err
	}

	in.UserID = userID
	if in.UserEmail == "" || in.UserName == "" {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		if err == nil {
			if in.UserEmail == "" {
				in.UserEmail = user.Email
			}
			if in.UserName == "" {
				in.UserName = user.Name
			}
		}
	}
	if in.WebsiteURL != "" {
		normalized, err := validation.NormalizeWebsiteURL(in.WebsiteURL)
		if err != nil {
			return nil, err
		}
		in.WebsiteURL = normalized
	}

	return s.flows.SaveOKRs(ctx, in)
}

// TeamInvite is one member in an invite-team request.
type TeamInvite struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	PersonalMessage string `json:"personal_message"`
}

type InviteTeamRequest struct {
	WebsiteURL         string                        `json:"website_url"`
	StrategicNarrative string                        `json:"strategic_narrative"`
	Objectives         []domain.Objective            `json:"objectives"`
	PlanningPeriod     string                        `json:"planning_period"`
	CompanyProfile     workflow.InviteCompanyProfile `json:"company_profile"`
	TeamMembers        []TeamInvite                  `json:"team_members"`
}

// SentInvite is a created invitation with its shareable link.
type SentInvite struct {
	UserID          string `json:"user_id"`
	OKRID           string `json:"okr_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	InvitationToken string `json:"invitation_token"`
	InvitationLink  string `json:"invitation_link"`
	ObjectivesCount int    `json:"objectives_count"`
	KeyResultsCount int    `json:"key_results_count"`
}

type InviteTeamResult struct {
	Invitations  []SentInvite                `json:"invitations"`
	TotalInvited int                         `json:"total_invited"`
	EmailsSent   bool                        `json:"emails_sent"`
	EmailResult  *workflow.SendInvitesResult `json:"email_result"`
	Message      string                      `json:"message"`
}

// InviteTeam creates invitations for the team and then emails them. The
// invitations stand even when emailing fails; the message reports the
// furthest step that succeeded.
func (s *Service) InviteTeam(ctx context.Context, leaderID string, req InviteTeamRequest) (*InviteTeamResult, error) {
	members, err := normalizeMembers(req.TeamMembers)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.PlanningPeriod) == "" {
		return nil, fmt.Errorf("%w: planning_period", ErrMissingField)
	}
	if err := validation.ValidateObjectives(req.Objectives); err != nil {
		return nil, err
	}
	websiteURL, err := validation.NormalizeWebsiteURL(req.WebsiteURL)
	if err != nil {
		return nil, err
	}

	leader, err := s.users.GetByID(ctx, leaderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrLeaderNotFound
		}
		return nil, fmt.Errorf("failed to load leader: %w", err)
	}

	team := make([]workflow.TeamMember, 0, len(members))
	for _, m := range members {
		team = append(team, workflow.TeamMember{Name: m.Name, Email: m.Email, Role: m.Role})
	}

	objectives := req.Objectives
	if objectives == nil {
		objectives = []domain.Objective{}
	}

	created, err := s.flows.InviteTeamMembers(ctx, workflow.InviteTeamMembersInput{
		LeaderUserID: leaderID,
		WebsiteURL:   websiteURL,
		LeaderOKRPlan: workflow.LeaderOKRPlan{
			StrategicNarrative: req.StrategicNarrative,
			Objectives:         workflow.Stringified(objectives),
		},
		PlanningPeriod: req.PlanningPeriod,
		CompanyProfile: req.CompanyProfile,
		TeamMembers:    team,
	})
	if err != nil {
		return nil, err
	}
	if !created.Success {
		msg := created.Message
		if msg == "" {
			msg = "Failed to send invitations"
		}
		return nil, fmt.Errorf("%w: %s", ErrInviteRejected, msg)
	}

	result := &InviteTeamResult{
		Invitations:  make([]SentInvite, 0, len(created.Invitations)),
		TotalInvited: created.TotalInvited,
		Message:      fmt.Sprintf("Successfully created %d invitation(s)!", created.TotalInvited),
	}

	messages := make(map[string]string, len(members))
	for _, m := range members {
		messages[strings.ToLower(m.Email)] = m.PersonalMessage
	}

	emails := make([]workflow.EmailInvitation, 0, len(created.Invitations))
	for _, inv := range created.Invitations {
		link := s.InvitationLink(inv.InvitationToken)
		result.Invitations = append(result.Invitations, SentInvite{
			UserID:          inv.UserID,
			OKRID:           inv.OKRID,
			Name:            inv.Name,
			Email:           inv.Email,
			Role:            inv.Role,
			InvitationToken: inv.InvitationToken,
			InvitationLink:  link,
			ObjectivesCount: inv.ObjectivesCount,
			KeyResultsCount: inv.KeyResultsCount,
		})

		narrative := inv.StrategicNarrative
		if narrative == "" {
			narrative = req.StrategicNarrative
		}
		okrs := inv.OKRs
		if okrs == nil {
			okrs = []domain.Objective{}
		}
		emails = append(emails, workflow.EmailInvitation{
			Name:               inv.Name,
			Email:              inv.Email,
			Role:               inv.Role,
			InvitationLink:     link,
			StrategicNarrative: narrative,
			OKRs:               workflow.Stringified(okrs),
			PersonalMessage:    messages[strings.ToLower(inv.Email)],
		})

		_ = s.auditor.LogInvitationCreated(ctx, leaderID, inv.UserID, inv.Email)
	}

	sent, err := s.flows.SendInvitationEmails(ctx, workflow.SendInvitesInput{
		Invitations:    emails,
		LeaderName:     leader.Name,
		LeaderEmail:    leader.Email,
		CompanyName:    req.CompanyProfile.CompanyName,
		PlanningPeriod: req.PlanningPeriod,
	})
	switch {
	case err != nil:
		log.Warn().Err(err).Str("leader_id", leaderID).Msg("Invitations created but emails were not sent")
		result.Message = "Invitations created! You can manually share the links."
	case sent.Success:
		result.EmailsSent = true
		result.EmailResult = sent
		result.Message = fmt.Sprintf("Successfully sent %d email(s) to team members!", sent.SentCount)
	default:
		result.EmailResult = sent
		result.Message = fmt.Sprintf("Invitations created, but only %d email(s) sent", sent.SentCount)
	}

	_ = s.auditor.LogTeamInvited(ctx, leaderID, result.TotalInvited, result.EmailsSent)

	return result, nil
}

// InvitationLink returns the page an invitee opens to review their plan.
func (s *Service) InvitationLink(token string) string {
	return s.baseURL + "/invite/" + token
}

func normalizeMembers(in []TeamInvite) ([]TeamInvite, error) {
	if len(in) == 0 {
		return nil, ErrNoTeamMembers
	}
	out := make([]TeamInvite, 0, len(in))
	for _, m := range in {
		m.Name = strings.TrimSpace(m.Name)
		m.Email = strings.TrimSpace(m.Email)
		m.Role = strings.TrimSpace(m.Role)
		if m.Name == "" || m.Role == "" || validation.ValidateEmail(m.Email) != nil {
			return nil, ErrInvalidTeamMember
		}
		out = append(out, m)
	}
	return out, nil
}
