package wizard

import (
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/domain"
)

// Screen is a step of the leader's planning wizard.
type Screen string

const (
	ScreenKickoff    Screen = "kickoff"
	ScreenEditInvite Screen = "edit-invite"
	ScreenWorkspace  Screen = "workspace"
	ScreenDashboard  Screen = "dashboard"
)

func (s Screen) IsValid() bool {
	switch s {
	case ScreenKickoff, ScreenEditInvite, ScreenWorkspace, ScreenDashboard:
		return true
	}
	return false
}

type CurrentUser struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	CompanyDomain string `json:"company_domain"`
}

type CompanyProfile struct {
	Domain        string   `json:"domain"`
	Name          string   `json:"name"`
	Industry      string   `json:"industry"`
	Size          string   `json:"size"`
	PublicNotes   string   `json:"public_notes"`
	Products      []string `json:"products,omitempty"`
	EmployeeCount string   `json:"employee_count,omitempty"`
	Headquarters  string   `json:"headquarters,omitempty"`
	FoundedYear   string   `json:"founded_year,omitempty"`
	KeyFeatures   []string `json:"key_features,omitempty"`
	Mission       string   `json:"mission,omitempty"`
}

type ShareableSummary struct {
	Title     string `json:"title"`
	Text      string `json:"text"`
	Shortlink string `json:"shortlink,omitempty"`
}

type Plan struct {
	PlanID         string             `json:"plan_id"`
	PlanName       string             `json:"plan_name"`
	OwnerID        string             `json:"owner_id"`
	Period         string             `json:"period"`
	Objectives     []domain.Objective `json:"objectives"`
	SummaryEnabled bool               `json:"summary_enabled"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

type InviteStatus string

const (
	InviteQueued   InviteStatus = "queued"
	InviteSent     InviteStatus = "sent"
	InviteAccepted InviteStatus = "accepted"
	InviteExpired  InviteStatus = "expired"
)

type Invite struct {
	InviteID        string       `json:"invite_id"`
	Email           string       `json:"email"`
	Name            string       `json:"name,omitempty"`
	RoleTitle       string       `json:"role_title"`
	WorkspaceLink   string       `json:"workspace_link"`
	Status          InviteStatus `json:"status"`
	PersonalMessage string       `json:"personal_message,omitempty"`
	UserID          string       `json:"user_id,omitempty"`
	OKRID           string       `json:"okr_id,omitempty"`
	InvitationToken string       `json:"invitation_token,omitempty"`
	ObjectivesCount int          `json:"objectives_count,omitempty"`
	KeyResultsCount int          `json:"key_results_count,omitempty"`
}

type Workspace struct {
	WorkspaceID string             `json:"workspace_id"`
	PlanID      string             `json:"plan_id"`
	UserID      string             `json:"user_id"`
	UserName    string             `json:"user_name"`
	UserRole    string             `json:"user_role"`
	DraftOKRs   []domain.Objective `json:"draft_okrs"`
	Status      string             `json:"status"`
	InvitedBy   string             `json:"invited_by,omitempty"`
}

type WeeklyUpdate struct {
	UpdateID     string    `json:"update_id"`
	PlanID       string    `json:"plan_id"`
	ObjectiveID  string    `json:"objective_id"`
	KRID         string    `json:"kr_id"`
	ActualValue  float64   `json:"actual_value"`
	Notes        string    `json:"notes"`
	EvidenceLink string    `json:"evidence_link,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type UpdateSchedule struct {
	ScheduleID   string                   `json:"schedule_id"`
	PlanID       string                   `json:"plan_id"`
	Name         string                   `json:"name"`
	Cadence      domain.ReminderFrequency `json:"cadence"`
	DayOfWeek    string                   `json:"day_of_week"`
	TimeOfDay    string                   `json:"time_of_day"`
	Participants []string                 `json:"participants"`
	NextRunAt    time.Time                `json:"next_run_at"`
}

// State is everything the wizard remembers between screens for one user.
type State struct {
	Screen           Screen             `json:"screen"`
	CurrentUser      *CurrentUser       `json:"current_user"`
	CompanyProfile   *CompanyProfile    `json:"company_profile"`
	LeaderObjectives []domain.Objective `json:"leader_objectives"`
	ShareableSummary *ShareableSummary  `json:"shareable_summary"`
	PlanningPeriod   string             `json:"planning_period"`
	Plan             *Plan              `json:"plan"`
	Invites          []Invite           `json:"invites"`
	Workspaces       []Workspace        `json:"workspaces"`
	WeeklyUpdates    []WeeklyUpdate     `json:"weekly_updates"`
	UpdateSchedules  []UpdateSchedule   `json:"update_schedules"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// Initial returns the state of a wizard that has not started.
func Initial() State {
	return State{
		Screen:           ScreenKickoff,
		LeaderObjectives: []domain.Objective{},
		Invites:          []Invite{},
		Workspaces:       []Workspace{},
		WeeklyUpdates:    []WeeklyUpdate{},
		UpdateSchedules:  []UpdateSchedule{},
	}
}
