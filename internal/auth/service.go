package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/audit"
	"github.com/aliuyar1234/okrlaunch/internal/cache"
	"github.com/aliuyar1234/okrlaunch/internal/config"
	"github.com/aliuyar1234/okrlaunch/internal/domain"
	"github.com/aliuyar1234/okrlaunch/internal/store"
	"github.com/rs/zerolog/log"
)

var (
	// ErrOAuthDisabled is returned when no identity provider is configured
	ErrOAuthDisabled = errors.New("oauth sign-in is not configured")

	// ErrInvalidState is returned when the callback state is unknown or expired
	ErrInvalidState = errors.New("invalid or expired oauth state")

	// ErrProviderFailure wraps identity provider errors
	ErrProviderFailure = errors.New("identity provider request failed")
)

const (
	statePrefix = "oauth:state:"
	stateTTL    = 10 * time.Minute
)

// pendingSignIn is stored in the cache between Begin and Complete.
type pendingSignIn struct {
	CodeVerifier string    `json:"code_verifier"`
	Next         string    `json:"next"`
	CreatedAt    time.Time `json:"created_at"`
}

// SignInResult is returned after a successful callback.
type SignInResult struct {
	User  domain.User
	Token string
	Next  string
}

// OAuthService runs the authorization code flow and issues session tokens.
type OAuthService struct {
	cfg         config.OAuthConfig
	client      ProviderClient
	states      cache.Store
	users       store.Users
	auditor     *audit.Writer
	jwtSecret   string
	sessionDays int
}

func NewOAuthService(cfg config.OAuthConfig, client ProviderClient, states cache.Store, users store.Users, auditor *audit.Writer, jwtSecret string, sessionDays int) *OAuthService {
	return &OAuthService{
		cfg:         cfg,
		client:      client,
		states:      states,
		users:       users,
		auditor:     auditor,
		jwtSecret:   jwtSecret,
		sessionDays: sessionDays,
	}
}

// Begin creates a state and PKCE verifier and returns the provider URL to
// redirect the browser to. next is a same-site path to return to afterwards.
func (s *OAuthService) Begin(ctx context.Context, next string) (string, error) {
	if !s.cfg.Enabled() {
		return "", ErrOAuthDisabled
	}

	state, err := secureRandomString(32)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	verifier, err := secureRandomString(48)
	if err != nil {
		return "", fmt.Errorf("generate code verifier: %w", err)
	}

	pending := pendingSignIn{
		CodeVerifier: verifier,
		Next:         SafeNextPath(next),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.states.Set(ctx, statePrefix+state, pending, stateTTL); err != nil {
		return "", fmt.Errorf("persist state: %w", err)
	}

	authURL, err := url.Parse(s.cfg.AuthorizeURL)
	if err != nil {
		return "", fmt.Errorf("parse authorize url: %w", err)
	}
	params := authURL.Query()
	params.Set("response_type", "code")
	params.Set("client_id", s.cfg.ClientID)
	params.Set("redirect_uri", s.cfg.RedirectURL)
	params.Set("scope", strings.Join(s.cfg.Scopes, " "))
	params.Set("state", state)
	params.Set("code_challenge", pkceChallenge(verifier))
	params.Set("code_challenge_method", "S256")
	authURL.RawQuery = params.Encode()

	return authURL.String(), nil
}

// Complete validates state, exchanges the code, upserts the user and issues
// a session token.
func (s *OAuthService) Complete(ctx context.Context, code, state string) (*SignInResult, error) {
	if !s.cfg.Enabled() {
		return nil, ErrOAuthDisabled
	}
	if strings.TrimSpace(code) == "" || strings.TrimSpace(state) == "" {
		return nil, ErrInvalidState
	}

	var pending pendingSignIn
	ok, err := s.states.Take(ctx, statePrefix+strings.TrimSpace(state), &pending)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if !ok {
		return nil, ErrInvalidState
	}

	token, err := s.client.ExchangeCode(ctx, s.cfg, code, pending.CodeVerifier)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	info, err := s.client.FetchUserInfo(ctx, s.cfg, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	if info.Subject == "" || info.Email == "" {
		return nil, fmt.Errorf("%w: profile is missing subject or email", ErrProviderFailure)
	}

	user, err := s.users.Upsert(ctx, domain.UserUpsert{
		ID:    info.Subject,
		Email: info.Email,
		Name:  DisplayName(info),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	sessionToken, err := CreateToken(user.ID, s.jwtSecret, s.sessionDays)
	if err != nil {
		return nil, err
	}

	if err := s.auditor.LogUserSignedIn(ctx, user.ID, user.Email); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to audit sign-in")
	}

	return &SignInResult{User: user, Token: sessionToken, Next: pending.Next}, nil
}

// DisplayName picks full_name, then name, then display_name, then the local
// part of the email address.
func DisplayName(info *UserInfo) string {
	if name := firstNonEmpty(info.FullName, info.Name, info.DisplayName); name != "" {
		return name
	}
	if at := strings.Index(info.Email, "@"); at > 0 {
		return info.Email[:at]
	}
	return info.Email
}

// SafeNextPath only allows local absolute paths, defaulting to "/".
func SafeNextPath(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}

func secureRandomString(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func pkceChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
