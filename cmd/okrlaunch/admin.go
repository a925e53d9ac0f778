package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/app"
	"github.com/aliuyar1234/okrlaunch/internal/cache"
	"github.com/aliuyar1234/okrlaunch/internal/config"
	"github.com/aliuyar1234/okrlaunch/internal/db"
	"github.com/aliuyar1234/okrlaunch/internal/domain"
	"github.com/aliuyar1234/okrlaunch/internal/invites"
	"github.com/aliuyar1234/okrlaunch/internal/reminders"
	"github.com/aliuyar1234/okrlaunch/internal/store"
)

func runAdmin(args []string) int {
	if len(args) == 0 {
		printAdminUsage()
		return 2
	}

	switch args[0] {
	case "migrate":
		return runMigrate(args[1:])
	case "create-invite":
		return runCreateInvite(args[1:])
	case "finalize-okrs":
		return runFinalizeOKRs(args[1:])
	case "send-reminders":
		return runSendReminders(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown admin command: %s\n", args[0])
		printAdminUsage()
		return 2
	}
}

func printAdminUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  okrlaunch admin migrate")
	fmt.Fprintln(os.Stderr, "  okrlaunch admin create-invite --email user@example.com --okrs-file okrs.json [--inviter <user id>] [--name <name>] [--role <role>]")
	fmt.Fprintln(os.Stderr, "  okrlaunch admin finalize-okrs --user <user id>")
	fmt.Fprintln(os.Stderr, "  okrlaunch admin send-reminders")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Notes:")
	fmt.Fprintln(os.Stderr, "  - Database settings come from OKR_DB_DRIVER and OKR_DB_DSN.")
	fmt.Fprintln(os.Stderr, "  - send-reminders uses the OKR_WORKFLOW_* settings.")
}

// adminEnv loads configuration and opens the store for a one-shot command.
func adminEnv(ctx context.Context) (*config.Config, store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}
	st, err := db.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, st, nil
}

func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func runMigrate(args []string) int {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	_, st, err := adminEnv(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	if err := st.ApplyMigrations(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to run migrations: %v\n", err)
		return 1
	}

	fmt.Fprintln(os.Stdout, "Migrations applied.")
	return 0
}

func runCreateInvite(args []string) int {
	fs := flag.NewFlagSet("create-invite", flag.ContinueOnError)

	var params invites.CreateParams
	var okrsFile string

	fs.StringVar(&params.Email, "email", "", "Invitee email")
	fs.StringVar(&params.Name, "name", "", "Invitee name")
	fs.StringVar(&params.Role, "role", "", "Invitee role")
	fs.StringVar(&params.InviterID, "inviter", "", "User id of the inviting leader")
	fs.StringVar(&params.WebsiteURL, "website", "", "Company website URL")
	fs.StringVar(&params.CompanyName, "company", "", "Company name")
	fs.StringVar(&params.PlanningPeriod, "period", "", "Planning period")
	fs.StringVar(&params.StrategicNarrative, "narrative", "", "Strategic narrative")
	fs.StringVar(&okrsFile, "okrs-file", "", "JSON file holding the draft objectives")

	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	if strings.TrimSpace(params.Email) == "" || okrsFile == "" {
		fmt.Fprintln(os.Stderr, "--email and --okrs-file are required")
		return 2
	}

	raw, err := os.ReadFile(okrsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", okrsFile, err)
		return 1
	}
	var objectives []domain.Objective
	if err := json.Unmarshal(raw, &objectives); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse %s: %v\n", okrsFile, err)
		return 2
	}
	params.OKRs = objectives

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cfg, st, err := adminEnv(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	services := app.NewServices(cfg, st, cache.NewMemoryStore())
	result, err := services.Invites.Create(ctx, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create invitation: %v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stdout, "Invitation created for %s (user %s).\n", result.User.Email, result.User.ID)
	fmt.Fprintln(os.Stdout, services.Planning.InvitationLink(result.Token))
	return 0
}

func runFinalizeOKRs(args []string) int {
	fs := flag.NewFlagSet("finalize-okrs", flag.ContinueOnError)

	var userID string
	fs.StringVar(&userID, "user", "", "User id whose accepted drafts should be finalized")

	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		fmt.Fprintln(os.Stderr, "--user is required")
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cfg, st, err := adminEnv(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	services := app.NewServices(cfg, st, cache.NewMemoryStore())
	rows, err := services.Invites.FinalizeAccepted(ctx, userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to finalize OKRs: %v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stdout, "Finalized %d draft row(s).\n", rows)
	return 0
}

func runSendReminders(args []string) int {
	fs := flag.NewFlagSet("send-reminders", flag.ContinueOnError)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.WorkflowTimeout()+15*time.Second)
	defer cancel()

	st, err := db.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer st.Close()

	services := app.NewServices(cfg, st, cache.NewMemoryStore())
	result, err := services.Dispatcher.Run(ctx, reminders.TriggerCLI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to send reminders: %v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stdout, "%s (sent: %d)\n", result.Message, result.SentCount)
	return 0
}
