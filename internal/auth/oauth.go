package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/config"
)

// TokenResponse is the subset of the provider token response that sign-in uses.
type TokenResponse struct {
	AccessToken string
	TokenType   string
	IDToken     string
}

// UserInfo is the provider profile. The name fields are kept separate so the
// display name can fall back in a fixed order.
type UserInfo struct {
	Subject     string
	Email       string
	FullName    string
	Name        string
	DisplayName string
}

// ProviderClient encapsulates outbound HTTP calls to the identity provider.
type ProviderClient interface {
	ExchangeCode(ctx context.Context, provider config.OAuthConfig, code, codeVerifier string) (*TokenResponse, error)
	FetchUserInfo(ctx context.Context, provider config.OAuthConfig, accessToken string) (*UserInfo, error)
}

// HTTPProviderClient is the default HTTP implementation.
type HTTPProviderClient struct {
	httpClient *http.Client
}

// NewHTTPProviderClient constructs the default ProviderClient.
func NewHTTPProviderClient(client *http.Client) *HTTPProviderClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPProviderClient{httpClient: client}
}

// ExchangeCode performs the OAuth token exchange.
func (c *HTTPProviderClient) ExchangeCode(ctx context.Context, provider config.OAuthConfig, code, codeVerifier string) (*TokenResponse, error) {
	if strings.TrimSpace(provider.TokenURL) == "" {
		return nil, fmt.Errorf("token url missing")
	}
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", provider.RedirectURL)
	data.Set("client_id", provider.ClientID)
	if provider.ClientSecret != "" {
		data.Set("client_secret", provider.ClientSecret)
	}
	if strings.TrimSpace(codeVerifier) != "" {
		data.Set("code_verifier", codeVerifier)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	raw, err := c.doJSON(req, "token exchange")
	if err != nil {
		return nil, err
	}

	token := &TokenResponse{
		AccessToken: stringValue(raw["access_token"]),
		TokenType:   stringValue(raw["token_type"]),
		IDToken:     stringValue(raw["id_token"]),
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token exchange: access_token missing")
	}
	return token, nil
}

// FetchUserInfo loads the userinfo endpoint profile.
func (c *HTTPProviderClient) FetchUserInfo(ctx context.Context, provider config.OAuthConfig, accessToken string) (*UserInfo, error) {
	if strings.TrimSpace(provider.UserInfoURL) == "" {
		return nil, fmt.Errorf("userinfo url missing")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, provider.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	raw, err := c.doJSON(req, "userinfo")
	if err != nil {
		return nil, err
	}

	// Some providers nest profile fields under user_metadata.
	meta, _ := raw["user_metadata"].(map[string]any)
	lookup := func(key string) string {
		if v := stringValue(raw[key]); strings.TrimSpace(v) != "" {
			return v
		}
		return stringValue(meta[key])
	}

	return &UserInfo{
		Subject:     firstNonEmpty(stringValue(raw["sub"]), stringValue(raw["id"])),
		Email:       firstNonEmpty(lookup("email"), lookup("mail")),
		FullName:    lookup("full_name"),
		Name:        lookup("name"),
		DisplayName: firstNonEmpty(lookup("display_name"), lookup("displayName")),
	}, nil
}

func (c *HTTPProviderClient) doJSON(req *http.Request, what string) (map[string]any, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", what, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", what, err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s failed: status=%d", what, resp.StatusCode)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", what, err)
	}
	return raw, nil
}

func stringValue(input any) string {
	switch v := input.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
