package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// WorkflowIDs names the external workflow for each of the seven flows.
type WorkflowIDs struct {
	Research      string
	Generate      string
	Regenerate    string
	Save          string
	InviteTeam    string
	SendEmails    string
	SendReminders string
}

// OAuthConfig configures the sign-in provider. Sign-in routes are disabled
// when ClientID is empty.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	AuthorizeURL string
	TokenURL     string
	UserInfoURL  string
	RedirectURL  string
	Scopes       []string
}

// Enabled reports whether OAuth sign-in is configured.
func (o OAuthConfig) Enabled() bool {
	return o.ClientID != ""
}

// Config holds all application configuration.
type Config struct {
	Env      string
	HTTPAddr string
	BaseURL  string

	DBDriver  string
	DBDSN     string
	JWTSecret string

	LogLevel string

	RateLimitRPM int
	SessionDays  int

	RedisURL string

	WorkflowEndpoint  string
	WorkflowAPIKey    string
	WorkflowProjectID string
	WorkflowTimeoutMS int
	WorkflowIDs       WorkflowIDs

	CronSecret       string
	ReminderSchedule string

	InviteDraftFallback bool

	OAuth OAuthConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Env = getEnvOrDefault("OKR_ENV", "dev")
	if cfg.Env != "dev" && cfg.Env != "prod" {
		return nil, fmt.Errorf("OKR_ENV must be one of: dev, prod (got: %s)", cfg.Env)
	}

	cfg.HTTPAddr = getEnvOrDefault("OKR_HTTP_ADDR", ":8080")

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("OKR_BASE_URL")), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("OKR_BASE_URL is required")
	}

	cfg.DBDriver = getEnvOrDefault("OKR_DB_DRIVER", "postgres")
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return nil, fmt.Errorf("OKR_DB_DRIVER must be one of: postgres, sqlite (got: %s)", cfg.DBDriver)
	}

	cfg.DBDSN = strings.TrimSpace(os.Getenv("OKR_DB_DSN"))
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("OKR_DB_DSN is required")
	}

	cfg.JWTSecret = os.Getenv("OKR_JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("OKR_JWT_SECRET is required")
	}
	if cfg.Env == "prod" && len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("OKR_JWT_SECRET must be at least 32 characters (currently %d)", len(cfg.JWTSecret))
	}

	cfg.LogLevel = getEnvOrDefault("OKR_LOG_LEVEL", "info")
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("OKR_LOG_LEVEL must be one of: debug, info, warn, error (got: %s)", cfg.LogLevel)
	}

	var err error
	cfg.RateLimitRPM, err = getEnvIntOrDefault("OKR_RATE_LIMIT_RPM", 120)
	if err != nil {
		return nil, err
	}

	cfg.SessionDays, err = getEnvIntOrDefault("OKR_SESSION_DAYS", 7)
	if err != nil {
		return nil, err
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("OKR_REDIS_URL"))

	cfg.WorkflowEndpoint = strings.TrimSpace(os.Getenv("OKR_WORKFLOW_ENDPOINT"))
	cfg.WorkflowAPIKey = os.Getenv("OKR_WORKFLOW_API_KEY")
	cfg.WorkflowProjectID = strings.TrimSpace(os.Getenv("OKR_WORKFLOW_PROJECT_ID"))

	cfg.WorkflowTimeoutMS, err = getEnvIntOrDefault("OKR_WORKFLOW_TIMEOUT_MS", 60000)
	if err != nil {
		return nil, err
	}
	if cfg.WorkflowTimeoutMS <= 0 || cfg.WorkflowTimeoutMS > 300000 {
		return nil, fmt.Errorf("OKR_WORKFLOW_TIMEOUT_MS must be between 1 and 300000 (got: %d)", cfg.WorkflowTimeoutMS)
	}

	cfg.WorkflowIDs = WorkflowIDs{
		Research:      strings.TrimSpace(os.Getenv("OKR_WORKFLOW_ID_RESEARCH")),
		Generate:      strings.TrimSpace(os.Getenv("OKR_WORKFLOW_ID_GENERATE")),
		Regenerate:    strings.TrimSpace(os.Getenv("OKR_WORKFLOW_ID_REGENERATE")),
		Save:          strings.TrimSpace(os.Getenv("OKR_WORKFLOW_ID_SAVE")),
		InviteTeam:    strings.TrimSpace(os.Getenv("OKR_WORKFLOW_ID_INVITE_TEAM")),
		SendEmails:    strings.TrimSpace(os.Getenv("OKR_WORKFLOW_ID_SEND_EMAILS")),
		SendReminders: strings.TrimSpace(os.Getenv("OKR_WORKFLOW_ID_SEND_REMINDERS")),
	}

	cfg.CronSecret = os.Getenv("CRON_SECRET")
	cfg.ReminderSchedule = strings.TrimSpace(os.Getenv("OKR_REMINDER_SCHEDULE"))

	cfg.InviteDraftFallback, err = getEnvBoolOrDefault("OKR_INVITE_DRAFT_FALLBACK", true)
	if err != nil {
		return nil, err
	}

	cfg.OAuth = OAuthConfig{
		ClientID:     strings.TrimSpace(os.Getenv("OKR_OAUTH_CLIENT_ID")),
		ClientSecret: os.Getenv("OKR_OAUTH_CLIENT_SECRET"),
		AuthorizeURL: strings.TrimSpace(os.Getenv("OKR_OAUTH_AUTHORIZE_URL")),
		TokenURL:     strings.TrimSpace(os.Getenv("OKR_OAUTH_TOKEN_URL")),
		UserInfoURL:  strings.TrimSpace(os.Getenv("OKR_OAUTH_USERINFO_URL")),
		RedirectURL:  getEnvOrDefault("OKR_OAUTH_REDIRECT_URL", cfg.BaseURL+"/auth/callback"),
		Scopes:       strings.Fields(getEnvOrDefault("OKR_OAUTH_SCOPES", "openid email profile")),
	}
	if cfg.OAuth.Enabled() && (cfg.OAuth.AuthorizeURL == "" || cfg.OAuth.TokenURL == "" || cfg.OAuth.UserInfoURL == "") {
		return nil, fmt.Errorf("OKR_OAUTH_AUTHORIZE_URL, OKR_OAUTH_TOKEN_URL and OKR_OAUTH_USERINFO_URL are required when OKR_OAUTH_CLIENT_ID is set")
	}

	return cfg, nil
}

// IsDev returns true if running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

// WorkflowTimeout returns the per-call workflow timeout.
func (c *Config) WorkflowTimeout() time.Duration {
	return time.Duration(c.WorkflowTimeoutMS) * time.Millisecond
}

// SessionTTL returns the lifetime of session tokens.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionDays) * 24 * time.Hour
}

// RedactedValues returns a map of config values with secrets redacted.
func (c *Config) RedactedValues() map[string]string {
	return map[string]string{
		"OKR_ENV":                   c.Env,
		"OKR_HTTP_ADDR":             c.HTTPAddr,
		"OKR_BASE_URL":              c.BaseURL,
		"OKR_DB_DRIVER":             c.DBDriver,
		"OKR_DB_DSN":                redactDSN(c.DBDSN),
		"OKR_JWT_SECRET":            "[REDACTED]",
		"OKR_LOG_LEVEL":             c.LogLevel,
		"OKR_RATE_LIMIT_RPM":        strconv.Itoa(c.RateLimitRPM),
		"OKR_SESSION_DAYS":          strconv.Itoa(c.SessionDays),
		"OKR_REDIS_URL":             redactDSN(c.RedisURL),
		"OKR_WORKFLOW_ENDPOINT":     c.WorkflowEndpoint,
		"OKR_WORKFLOW_API_KEY":      redactSecret(c.WorkflowAPIKey),
		"OKR_WORKFLOW_PROJECT_ID":   c.WorkflowProjectID,
		"OKR_WORKFLOW_TIMEOUT_MS":   strconv.Itoa(c.WorkflowTimeoutMS),
		"CRON_SECRET":               redactSecret(c.CronSecret),
		"OKR_REMINDER_SCHEDULE":     c.ReminderSchedule,
		"OKR_INVITE_DRAFT_FALLBACK": strconv.FormatBool(c.InviteDraftFallback),
		"OKR_OAUTH_CLIENT_ID":       c.OAuth.ClientID,
		"OKR_OAUTH_CLIENT_SECRET":   redactSecret(c.OAuth.ClientSecret),
	}
}

func redactSecret(secret string) string {
	if secret == "" {
		return ""
	}
	return "[REDACTED]"
}

func redactDSN(dsn string) string {
	if start := strings.Index(dsn, "://"); start != -1 {
		if end := strings.Index(dsn[start+3:], "@"); end != -1 {
			return dsn[:start+3] + "[REDACTED]" + dsn[start+3+end:]
		}
	}
	return dsn
}

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got: %q)", key, value)
	}
	return parsed, nil
}

func getEnvBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean (got: %q)", key, value)
	}
	return parsed, nil
}
