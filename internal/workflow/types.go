package workflow

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/aliuyar1234/okrlaunch/internal/domain"
)

// FlexString accepts a JSON string or number. Research results report
// employee counts and founding years either way.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(strings.TrimSpace(n.String()))
	return nil
}

// CompanyProfile is the structured output of company research.
type CompanyProfile struct {
	CompanyName   string     `json:"company_name"`
	Industry      string     `json:"industry"`
	Products      []string   `json:"products"`
	Mission       string     `json:"mission"`
	EmployeeCount FlexString `json:"employee_count"`
	Headquarters  string     `json:"headquarters"`
	FoundedYear   FlexString `json:"founded_year"`
	KeyFeatures   []string   `json:"key_features"`
}

// OKRPlan is a strategic narrative with its objectives.
type OKRPlan struct {
	StrategicNarrative string             `json:"strategic_narrative"`
	Objectives         []domain.Objective `json:"objectives"`
}

// Flow 1.
type ResearchCompanyResult struct {
	WebsiteURL     string         `json:"website_url"`
	CompanyProfile CompanyProfile `json:"company_profile"`
}

// Flow 2.
type GenerateOKRsInput struct {
	CompanyProfile CompanyProfile `json:"company_profile"`
	UserRole       string         `json:"user_role"`
	UserGoals      string         `json:"user_goals"`
	PlanningPeriod string         `json:"planning_period"`
	WebsiteData    string         `json:"website_data,omitempty"`
}

type GenerationMetadata struct {
	ObjectivesCount int    `json:"objectives_count"`
	KeyResultsCount int    `json:"key_results_count"`
	PlanningPeriod  string `json:"planning_period"`
	UserRole        string `json:"user_role"`
	CompanyName     string `json:"company_name"`
}

// GenerateOKRsResult is returned by flows 2 and 3.
type GenerateOKRsResult struct {
	Success  bool               `json:"success"`
	OKRPlan  OKRPlan            `json:"okr_plan"`
	Metadata GenerationMetadata `json:"metadata"`
}

// Flow 3.
type RegenerateOKRsInput struct {
	CompanyProfile  CompanyProfile `json:"company_profile"`
	UserRole        string         `json:"user_role"`
	PlanningPeriod  string         `json:"planning_period"`
	EditedNarrative string         `json:"edited_narrative"`
}

// Flow 4.
type SaveOKRsInput struct {
	UserID         string  `json:"user_id"`
	UserEmail      string  `json:"user_email"`
	UserName       string  `json:"user_name"`
	UserRole       string  `json:"user_role"`
	WebsiteURL     string  `json:"website_url"`
	CompanyName    string  `json:"company_name"`
	PlanningPeriod string  `json:"planning_period"`
	OKRPlan        OKRPlan `json:"okr_plan"`
}

type SaveOKRsResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Flow 5.
type TeamMember struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LeaderOKRPlan carries the leader's objectives pre-stringified.
type LeaderOKRPlan struct {
	StrategicNarrative string                         `json:"strategic_narrative"`
	Objectives         JSONString[[]domain.Objective] `json:"objectives"`
}

type InviteCompanyProfile struct {
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
	Mission     string `json:"mission"`
}

type InviteTeamMembersInput struct {
	LeaderUserID   string               `json:"leader_user_id"`
	WebsiteURL     string               `json:"website_url"`
	LeaderOKRPlan  LeaderOKRPlan        `json:"leader_okr_plan"`
	PlanningPeriod string               `json:"planning_period"`
	CompanyProfile InviteCompanyProfile `json:"company_profile"`
	TeamMembers    []TeamMember         `json:"team_members"`
}

// InvitationDetails describes one invitee created by flow 5.
type InvitationDetails struct {
	UserID             string             `json:"user_id"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	Role               string             `json:"role"`
	InvitationToken    string             `json:"invitation_token"`
	InvitationLink     string             `json:"invitation_link"`
	OKRID              string             `json:"okr_id"`
	WebsiteURL         string             `json:"website_url"`
	CompanyName        string             `json:"company_name"`
	ObjectivesCount    int                `json:"objectives_count"`
	KeyResultsCount    int                `json:"key_results_count"`
	StrategicNarrative string             `json:"strategic_narrative"`
	OKRs               []domain.Objective `json:"okrs"`
}

type InviteTeamMembersResult struct {
	Success      bool                `json:"success"`
	Message      string              `json:"message"`
	Invitations  []InvitationDetails `json:"invitations"`
	TotalInvited int                 `json:"total_invited"`
}

// Flow 6.
type EmailInvitation struct {
	Name               string                         `json:"name"`
	Email              string                         `json:"email"`
	Role               string                         `json:"role"`
	InvitationLink     string                         `json:"invitation_link"`
	StrategicNarrative string                         `json:"strategic_narrative"`
	OKRs               JSONString[[]domain.Objective] `json:"okrs"`
	PersonalMessage    string                         `json:"personal_message"`
}

type SendInvitesInput struct {
	Invitations    []EmailInvitation `json:"invitations"`
	LeaderName     string            `json:"leader_name"`
	LeaderEmail    string            `json:"leader_email"`
	CompanyName    string            `json:"company_name"`
	PlanningPeriod string            `json:"planning_period"`
}

type SendResult struct {
	Email  string `json:"email"`
	Status string `json:"status"`
	SentAt string `json:"sent_at,omitempty"`
	Note   string `json:"note,omitempty"`
}

type SendInvitesResult struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	SentCount   int          `json:"sent_count"`
	FailedCount int          `json:"failed_count"`
	TotalCount  int          `json:"total_count"`
	Results     []SendResult `json:"results"`
}

// Flow 7.
type SendRemindersResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	SentCount int    `json:"sent_count"`
}
