package app

import (
	"net/http"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/audit"
	"github.com/aliuyar1234/okrlaunch/internal/auth"
	"github.com/aliuyar1234/okrlaunch/internal/cache"
	"github.com/aliuyar1234/okrlaunch/internal/config"
	"github.com/aliuyar1234/okrlaunch/internal/invites"
	"github.com/aliuyar1234/okrlaunch/internal/okrs"
	"github.com/aliuyar1234/okrlaunch/internal/planning"
	"github.com/aliuyar1234/okrlaunch/internal/reminders"
	"github.com/aliuyar1234/okrlaunch/internal/store"
	"github.com/aliuyar1234/okrlaunch/internal/wizard"
	"github.com/aliuyar1234/okrlaunch/internal/workflow"
)

const wizardStateTTL = 30 * 24 * time.Hour

// Services is the wired set of domain services shared by the HTTP routes,
// the reminder schedule and the admin commands.
type Services struct {
	Auditor    *audit.Writer
	Flows      *workflow.Flows
	Invites    *invites.Service
	OKRs       *okrs.Service
	Settings   *reminders.SettingsService
	Dispatcher *reminders.Dispatcher
	Planning   *planning.Service
	Wizard     *wizard.Repository
	OAuth      *auth.OAuthService
}

func NewServices(cfg *config.Config, st store.Store, c cache.Store) *Services {
	auditor := audit.NewWriter(st.Audit())

	client := workflow.NewClient(workflow.Config{
		Endpoint:  cfg.WorkflowEndpoint,
		APIKey:    cfg.WorkflowAPIKey,
		ProjectID: cfg.WorkflowProjectID,
		Timeout:   cfg.WorkflowTimeout(),
	}, nil)
	flows := workflow.NewFlows(client, cfg.WorkflowIDs)

	return &Services{
		Auditor: auditor,
		Flows:   flows,
		Invites: invites.NewService(st, auditor, invites.Options{
			AllowFinalizedFallback: cfg.InviteDraftFallback,
		}),
		OKRs:       okrs.NewService(st),
		Settings:   reminders.NewSettingsService(st.Users(), auditor),
		Dispatcher: reminders.NewDispatcher(flows, auditor),
		Planning:   planning.NewService(flows, st.Users(), auditor, cfg.BaseURL),
		Wizard:     wizard.NewRepository(c, wizardStateTTL),
		OAuth: auth.NewOAuthService(
			cfg.OAuth,
			auth.NewHTTPProviderClient(&http.Client{Timeout: 15 * time.Second}),
			c,
			st.Users(),
			auditor,
			cfg.JWTSecret,
			cfg.SessionDays,
		),
	}
}
