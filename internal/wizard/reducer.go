package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/aliuyar1234/okrlaunch/internal/domain"
)

var (
	ErrUnknownAction  = errors.New("unknown wizard action")
	ErrInvalidPayload = errors.New("invalid wizard action payload")
)

const (
	ActionSetScreen           = "set_screen"
	ActionSetUser             = "set_user"
	ActionSetCompanyProfile   = "set_company_profile"
	ActionSetLeaderObjectives = "set_leader_objectives"
	ActionSetShareableSummary = "set_shareable_summary"
	ActionSetPlanningPeriod   = "set_planning_period"
	ActionSetPlan             = "set_plan"
	ActionSetInvites          = "set_invites"
	ActionAddInvite           = "add_invite"
	ActionSetWorkspaces       = "set_workspaces"
	ActionAddWeeklyUpdate     = "add_weekly_update"
	ActionAddUpdateSchedule   = "add_update_schedule"
	ActionReset               = "reset"
)

// Action is a single state transition. Payload shape depends on Type; the
// set_* actions accept null to clear optional values.
type Action struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Reduce applies a to s and returns the new state. s is never modified and
// the result shares no slices with it.
func Reduce(s State, a Action) (State, error) {
	next := clone(s)

	switch a.Type {
	case ActionSetScreen:
		var screen Screen
		if err := decode(a, &screen); err != nil {
			return s, err
		}
		if !screen.IsValid() {
			return s, fmt.Errorf("%w: unknown screen %q", ErrInvalidPayload, screen)
		}
		next.Screen = screen

	case ActionSetUser:
		var user *CurrentUser
		if err := decode(a, &user); err != nil {
			return s, err
		}
		next.CurrentUser = user

	case ActionSetCompanyProfile:
		var profile *CompanyProfile
		if err := decode(a, &profile); err != nil {
			return s, err
		}
		next.CompanyProfile = profile

	case ActionSetLeaderObjectives:
		var objectives []domain.Objective
		if err := decode(a, &objectives); err != nil {
			return s, err
		}
		next.LeaderObjectives = orEmpty(objectives)

	case ActionSetShareableSummary:
		var summary *ShareableSummary
		if err := decode(a, &summary); err != nil {
			return s, err
		}
		next.ShareableSummary = summary

	case ActionSetPlanningPeriod:
		var period string
		if err := decode(a, &period); err != nil {
			return s, err
		}
		next.PlanningPeriod = period

	case ActionSetPlan:
		var plan *Plan
		if err := decode(a, &plan); err != nil {
			return s, err
		}
		next.Plan = plan

	case ActionSetInvites:
		var invites []Invite
		if err := decode(a, &invites); err != nil {
			return s, err
		}
		next.Invites = orEmpty(invites)

	case ActionAddInvite:
		var invite Invite
		if err := decode(a, &invite); err != nil {
			return s, err
		}
		next.Invites = append(next.Invites, invite)

	case ActionSetWorkspaces:
		var workspaces []Workspace
		if err := decode(a, &workspaces); err != nil {
			return s, err
		}
		next.Workspaces = orEmpty(workspaces)

	case ActionAddWeeklyUpdate:
		var update WeeklyUpdate
		if err := decode(a, &update); err != nil {
			return s, err
		}
		next.WeeklyUpdates = append(next.WeeklyUpdates, update)

	case ActionAddUpdateSchedule:
		var schedule UpdateSchedule
		if err := decode(a, &schedule); err != nil {
			return s, err
		}
		next.UpdateSchedules = append(next.UpdateSchedules, schedule)

	case ActionReset:
		return Initial(), nil

	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}

	return next, nil
}

func decode(a Action, dest any) error {
	if len(a.Payload) == 0 {
		return fmt.Errorf("%w: %s requires a payload", ErrInvalidPayload, a.Type)
	}
	if err := json.Unmarshal(a.Payload, dest); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, a.Type, err)
	}
	return nil
}

// clone copies the top-level slices so appends never reach the caller's
// backing arrays. Elements are replaced wholesale by actions, never edited
// in place, so a shallow copy suffices.
func clone(s State) State {
	s.LeaderObjectives = orEmpty(slices.Clone(s.LeaderObjectives))
	s.Invites = orEmpty(slices.Clone(s.Invites))
	s.Workspaces = orEmpty(slices.Clone(s.Workspaces))
	s.WeeklyUpdates = orEmpty(slices.Clone(s.WeeklyUpdates))
	s.UpdateSchedules = orEmpty(slices.Clone(s.UpdateSchedules))
	return s
}

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
