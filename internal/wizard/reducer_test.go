package wizard

import (
	"encoding/json"
	"testing"

	"github.com/aliuyar1234/okrlaunch/internal/domain"
	"github.com/stretchr/testify/require"
)

func action(t *testing.T, typ string, payload any) Action {
	t.Helper()
	if payload == nil {
		return Action{Type: typ}
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return Action{Type: typ, Payload: raw}
}

func TestReduce_SetActions(t *testing.T) {
	s := Initial()
	var err error

	s, err = Reduce(s, action(t, ActionSetScreen, ScreenEditInvite))
	require.NoError(t, err)
	require.Equal(t, ScreenEditInvite, s.Screen)

	s, err = Reduce(s, action(t, ActionSetUser, CurrentUser{UserID: "u1", Name: "Lee"}))
	require.NoError(t, err)
	require.Equal(t, "Lee", s.CurrentUser.Name)

	s, err = Reduce(s, action(t, ActionSetCompanyProfile, CompanyProfile{Name: "Acme", Domain: "acme.io"}))
	require.NoError(t, err)
	require.Equal(t, "Acme", s.CompanyProfile.Name)

	s, err = Reduce(s, action(t, ActionSetLeaderObjectives, []domain.Objective{{Title: "Grow", KeyResults: []domain.KeyResult{}}}))
	require.NoError(t, err)
	require.Len(t, s.LeaderObjectives, 1)

	s, err = Reduce(s, action(t, ActionSetShareableSummary, ShareableSummary{Title: "T", Text: "Narrative"}))
	require.NoError(t, err)
	require.Equal(t, "Narrative", s.ShareableSummary.Text)

	s, err = Reduce(s, action(t, ActionSetPlanningPeriod, "Q3 2026"))
	require.NoError(t, err)
	require.Equal(t, "Q3 2026", s.PlanningPeriod)

	s, err = Reduce(s, action(t, ActionSetPlan, Plan{PlanID: "p1", Period: "Q3 2026"}))
	require.NoError(t, err)
	require.Equal(t, "p1", s.Plan.PlanID)

	s, err = Reduce(s, action(t, ActionSetWorkspaces, []Workspace{{WorkspaceID: "w1"}}))
	require.NoError(t, err)
	require.Len(t, s.Workspaces, 1)

	s, err = Reduce(s, Action{Type: ActionSetUser, Payload: json.RawMessage(`null`)})
	require.NoError(t, err)
	require.Nil(t, s.CurrentUser)

	s, err = Reduce(s, Action{Type: ActionSetInvites, Payload: json.RawMessage(`null`)})
	require.NoError(t, err)
	require.NotNil(t, s.Invites)
	require.Empty(t, s.Invites)
}

func TestReduce_AppendsDoNotMutateInput(t *testing.T) {
	base := Initial()
	base.Invites = make([]Invite, 1, 4)
	base.Invites[0] = Invite{InviteID: "first"}

	next, err := Reduce(base, action(t, ActionAddInvite, Invite{InviteID: "second"}))
	require.NoError(t, err)
	require.Len(t, next.Invites, 2)
	require.Len(t, base.Invites, 1)

	// The spare capacity of the input must not have been written.
	require.Equal(t, Invite{}, base.Invites[:2][1])

	next, err = Reduce(next, action(t, ActionAddWeeklyUpdate, WeeklyUpdate{UpdateID: "wu1", ActualValue: 4}))
	require.NoError(t, err)
	require.Len(t, next.WeeklyUpdates, 1)

	next, err = Reduce(next, action(t, ActionAddUpdateSchedule, UpdateSchedule{ScheduleID: "s1", Cadence: domain.ReminderWeekly}))
	require.NoError(t, err)
	require.Len(t, next.UpdateSchedules, 1)
	require.Empty(t, base.UpdateSchedules)
}

func TestReduce_Errors(t *testing.T) {
	s := Initial()

	_, err := Reduce(s, Action{Type: "fly_to_moon"})
	require.ErrorIs(t, err, ErrUnknownAction)

	_, err = Reduce(s, action(t, ActionSetScreen, "nowhere"))
	require.ErrorIs(t, err, ErrInvalidPayload)

	_, err = Reduce(s, Action{Type: ActionAddInvite})
	require.ErrorIs(t, err, ErrInvalidPayload)

	_, err = Reduce(s, Action{Type: ActionSetPlanningPeriod, Payload: json.RawMessage(`42`)})
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestReduce_Reset(t *testing.T) {
	s, err := Reduce(Initial(), action(t, ActionSetPlanningPeriod, "Q1"))
	require.NoError(t, err)

	s, err = Reduce(s, Action{Type: ActionReset})
	require.NoError(t, err)
	require.Equal(t, Initial(), s)
}
