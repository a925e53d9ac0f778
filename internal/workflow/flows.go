package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/config"
)

// Flow names used for logging and metrics.
const (
	FlowResearch      = "research_company"
	FlowGenerate      = "generate_okrs"
	FlowRegenerate    = "regenerate_okrs"
	FlowSave          = "save_okrs"
	FlowInviteTeam    = "invite_team_members"
	FlowSendEmails    = "send_invitation_emails"
	FlowSendReminders = "send_reminders"
)

const researchQuery = `
query ExecuteWorkflow($workflowId: String!, $website_url: String) {
  executeWorkflow(
    workflowId: $workflowId
    payload: { website_url: $website_url }
  ) {
    status
    result
  }
}`

const generateQuery = `
query ExecuteWorkflow(
  $workflowId: String!
  $company_profile_company_name: String
  $company_profile_industry: String
  $company_profile_products: [String]
  $company_profile_mission: String
  $company_profile_employee_count: String
  $company_profile_headquarters: String
  $company_profile_founded_year: String
  $company_profile_key_features: [String]
  $user_role: String
  $user_goals: String
  $planning_period: String
  $website_data: String
) {
  executeWorkflow(
    workflowId: $workflowId
    payload: {
      company_profile: {
        company_name: $company_profile_company_name
        industry: $company_profile_industry
        products: $company_profile_products
        mission: $company_profile_mission
        employee_count: $company_profile_employee_count
        headquarters: $company_profile_headquarters
        founded_year: $company_profile_founded_year
        key_features: $company_profile_key_features
      }
      user_role: $user_role
      user_goals: $user_goals
      planning_period: $planning_period
      website_data: $website_data
    }
  ) {
    status
    result
  }
}`

const regenerateQuery = `
query ExecuteWorkflow(
  $workflowId: String!
  $company_profile: JSON
  $user_role: String
  $planning_period: String
  $edited_narrative: String
) {
  executeWorkflow(
    workflowId: $workflowId
    payload: {
      company_profile: $company_profile
      user_role: $user_role
      planning_period: $planning_period
      edited_narrative: $edited_narrative
    }
  ) {
    status
    result
  }
}`

const saveQuery = `
query ExecuteWorkflow(
  $workflowId: String!
  $user_id: String
  $user_email: String
  $user_name: String
  $user_role: String
  $website_url: String
  $company_name: String
  $planning_period: String
  $okr_plan_strategic_narrative: String
  $okr_plan_objectives: [JSON]
) {
  executeWorkflow(
    workflowId: $workflowId
    payload: {
      user_id: $user_id
      user_email: $user_email
      user_name: $user_name
      user_role: $user_role
      website_url: $website_url
      company_name: $company_name
      planning_period: $planning_period
      okr_plan: {
        strategic_narrative: $okr_plan_strategic_narrative
        objectives: $okr_plan_objectives
      }
    }
  ) {
    status
    result
  }
}`

const inviteTeamQuery = `
query ExecuteWorkflow(
  $workflowId: String!
  $leader_user_id: String
  $website_url: String
  $leader_okr_plan_strategic_narrative: String
  $leader_okr_plan_objectives: String
  $planning_period: String
  $company_profile_company_name: String
  $company_profile_industry: String
  $company_profile_mission: String
  $team_members: [JSON]
) {
  executeWorkflow(
    workflowId: $workflowId
    payload: {
      leader_user_id: $leader_user_id
      website_url: $website_url
      leader_okr_plan: {
        strategic_narrative: $leader_okr_plan_strategic_narrative
        objectives: $leader_okr_plan_objectives
      }
      planning_period: $planning_period
      company_profile: {
        company_name: $company_profile_company_name
        industry: $company_profile_industry
        mission: $company_profile_mission
      }
      team_members: $team_members
    }
  ) {
    status
    result
  }
}`

const sendEmailsQuery = `
query ExecuteWorkflow(
  $workflowId: String!
  $invitations: [JSON]
  $leader_name: String
  $leader_email: String
  $company_name: String
  $planning_period: String
) {
  executeWorkflow(
    workflowId: $workflowId
    payload: {
      invitations: $invitations
      leader_name: $leader_name
      leader_email: $leader_email
      company_name: $company_name
      planning_period: $planning_period
    }
  ) {
    status
    result
  }
}`

const sendRemindersQuery = `
query ExecuteWorkflow($workflowId: String!, $trigger_date: String) {
  executeWorkflow(
    workflowId: $workflowId
    payload: { trigger_date: $trigger_date }
  ) {
    status
    result
  }
}`

// Flows exposes the seven workflows with typed inputs and outputs.
type Flows struct {
	client *Client
	ids    config.WorkflowIDs
}

func NewFlows(client *Client, ids config.WorkflowIDs) *Flows {
	return &Flows{client: client, ids: ids}
}

// ResearchCompany runs flow 1.
func (f *Flows) ResearchCompany(ctx context.Context, websiteURL string) (*ResearchCompanyResult, error) {
	return run[ResearchCompanyResult](ctx, f, FlowResearch, f.ids.Research, researchQuery, map[string]any{
		"website_url": websiteURL,
	})
}

// GenerateOKRs runs flow 2.
func (f *Flows) GenerateOKRs(ctx context.Context, in GenerateOKRsInput) (*GenerateOKRsResult, error) {
	p := in.CompanyProfile
	return run[GenerateOKRsResult](ctx, f, FlowGenerate, f.ids.Generate, generateQuery, map[string]any{
		"company_profile_company_name":   p.CompanyName,
		"company_profile_industry":       p.Industry,
		"company_profile_products":       nonNil(p.Products),
		"company_profile_mission":        p.Mission,
		"company_profile_employee_count": string(p.EmployeeCount),
		"company_profile_headquarters":   p.Headquarters,
		"company_profile_founded_year":   string(p.FoundedYear),
		"company_profile_key_features":   nonNil(p.KeyFeatures),
		"user_role":                      in.UserRole,
		"user_goals":                     in.UserGoals,
		"planning_period":                in.PlanningPeriod,
		"website_data":                   in.WebsiteData,
	})
}

// RegenerateOKRs runs flow 3.
func (f *Flows) RegenerateOKRs(ctx context.Context, in RegenerateOKRsInput) (*GenerateOKRsResult, error) {
	return run[GenerateOKRsResult](ctx, f, FlowRegenerate, f.ids.Regenerate, regenerateQuery, map[string]any{
		"company_profile": map[string]any{
			"company_name": in.CompanyProfile.CompanyName,
			"industry":     in.CompanyProfile.Industry,
			"products":     nonNil(in.CompanyProfile.Products),
			"mission":      in.CompanyProfile.Mission,
		},
		"user_role":        in.UserRole,
		"planning_period":  in.PlanningPeriod,
		"edited_narrative": in.EditedNarrative,
	})
}

// SaveOKRs runs flow 4. Objectives are sent as a native array.
func (f *Flows) SaveOKRs(ctx context.Context, in SaveOKRsInput) (*SaveOKRsResult, error) {
	return run[SaveOKRsResult](ctx, f, FlowSave, f.ids.Save, saveQuery, map[string]any{
		"user_id":                      in.UserID,
		"user_email":                   in.UserEmail,
		"user_name":                    in.UserName,
		"user_role":                    in.UserRole,
		"website_url":                  in.WebsiteURL,
		"company_name":                 in.CompanyName,
		"planning_period":              in.PlanningPeriod,
		"okr_plan_strategic_narrative": in.OKRPlan.StrategicNarrative,
		"okr_plan_objectives":          nonNil(in.OKRPlan.Objectives),
	})
}

// InviteTeamMembers runs flow 5. The leader objectives travel stringified.
func (f *Flows) InviteTeamMembers(ctx context.Context, in InviteTeamMembersInput) (*InviteTeamMembersResult, error) {
	return run[InviteTeamMembersResult](ctx, f, FlowInviteTeam, f.ids.InviteTeam, inviteTeamQuery, map[string]any{
		"leader_user_id":                      in.LeaderUserID,
		"website_url":                         in.WebsiteURL,
		"leader_okr_plan_strategic_narrative": in.LeaderOKRPlan.StrategicNarrative,
		"leader_okr_plan_objectives":          in.LeaderOKRPlan.Objectives,
		"planning_period":                     in.PlanningPeriod,
		"company_profile_company_name":        in.CompanyProfile.CompanyName,
		"company_profile_industry":            in.CompanyProfile.Industry,
		"company_profile_mission":             in.CompanyProfile.Mission,
		"team_members":                        nonNil(in.TeamMembers),
	})
}

// SendInvitationEmails runs flow 6. Each invitation's okrs travel stringified.
func (f *Flows) SendInvitationEmails(ctx context.Context, in SendInvitesInput) (*SendInvitesResult, error) {
	return run[SendInvitesResult](ctx, f, FlowSendEmails, f.ids.SendEmails, sendEmailsQuery, map[string]any{
		"invitations":     nonNil(in.Invitations),
		"leader_name":     in.LeaderName,
		"leader_email":    in.LeaderEmail,
		"company_name":    in.CompanyName,
		"planning_period": in.PlanningPeriod,
	})
}

// SendReminders runs flow 7 with trigger_date set to triggerDate in UTC.
func (f *Flows) SendReminders(ctx context.Context, triggerDate time.Time) (*SendRemindersResult, error) {
	return run[SendRemindersResult](ctx, f, FlowSendReminders, f.ids.SendReminders, sendRemindersQuery, map[string]any{
		"trigger_date": triggerDate.UTC().Format(time.RFC3339),
	})
}

func run[T any](ctx context.Context, f *Flows, flow, workflowID, query string, variables map[string]any) (*T, error) {
	if workflowID == "" {
		return nil, fmt.Errorf("%w: %s has no workflow id", ErrWorkflowNotConfigured, flow)
	}
	variables["workflowId"] = workflowID

	raw, err := f.client.Execute(ctx, flow, query, variables)
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: decode result: %v", ErrGatewayFailure, flow, err)
	}
	return &out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
