package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	drivenoauth "github.com/relaykit/connect-cli/internal/adapters/driven/oauth"
	"github.com/relaykit/connect-cli/internal/core/domain"
	"github.com/relaykit/connect-cli/internal/core/ports/driven"
)

const (
	defaultAuthURL   = "https://www.reddit.com/api/v1/authorize"
	defaultTokenURL  = "https://www.reddit.com/api/v1/access_token"
	defaultRevokeURL = "https://www.reddit.com/api/v1/revoke_token"

	defaultUserInfoURL = "https://oauth.reddit.com/api/v1/me"

	// Reddit rejects requests carrying a generic client User-Agent.
	userAgent = "connect-cli/1.0 (by /u/connect-cli)"
)

var defaultScopes = []string{"identity", "read", "submit"}

// OAuthHandler implements OAuth operations for Reddit.
// Reddit authenticates the client with HTTP Basic auth on every token
// endpoint call, even for installed apps where the secret is empty.
type OAuthHandler struct {
	userInfoURL string
}

// NewOAuthHandler creates a new Reddit OAuth handler.
func NewOAuthHandler() *OAuthHandler {
	return &OAuthHandler{userInfoURL: defaultUserInfoURL}
}

// BuildAuthURL constructs the Reddit OAuth authorization URL.
// duration=permanent is required or Reddit issues no refresh token.
func (h *OAuthHandler) BuildAuthURL(
	app *domain.App,
	redirectURI, state, codeChallenge string,
) string {
	pkce := &domain.PKCEChallenge{State: state, CodeChallenge: codeChallenge}
	extra := map[string]string{"duration": "permanent"}
	return drivenoauth.BuildAuthorizationURL(app.OAuth2, pkce, redirectURI, defaultScopes, extra)
}

// ExchangeCode exchanges an authorization code for tokens.
func (h *OAuthHandler) ExchangeCode(
	ctx context.Context,
	app *domain.App,
	code, redirectURI, codeVerifier string,
) (*domain.TokenSet, error) {
	return drivenoauth.Exchange(ctx, app.OAuth2, code, redirectURI, codeVerifier)
}

// RefreshToken refreshes an expired access token using a refresh token.
// Reddit refresh tokens are long-lived and not rotated.
func (h *OAuthHandler) RefreshToken(
	ctx context.Context,
	app *domain.App,
	refreshToken string,
) (*domain.TokenSet, error) {
	return drivenoauth.Refresh(ctx, app.OAuth2, refreshToken)
}

// RevokeToken invalidates a token at Reddit's revocation endpoint.
func (h *OAuthHandler) RevokeToken(ctx context.Context, app *domain.App, token string) error {
	return drivenoauth.Revoke(ctx, app.OAuth2, token, "access_token")
}

// GetUserInfo fetches the authenticated user's name from Reddit.
func (h *OAuthHandler) GetUserInfo(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.userInfoURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &domain.ProviderHTTPError{Status: resp.StatusCode, Body: string(body)}
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode user info: %w", err)
	}
	return payload.Name, nil
}

// DefaultConfig returns Reddit's well-known OAuth endpoints and scopes.
func (h *OAuthHandler) DefaultConfig() driven.OAuthDefaults {
	return driven.OAuthDefaults{
		OAuth2: &domain.OAuth2Config{
			AuthURL:      defaultAuthURL,
			TokenURL:     defaultTokenURL,
			RevokeURL:    defaultRevokeURL,
			Scopes:       defaultScopes,
			UseBasicAuth: true,
		},
	}
}

// SetupHint returns guidance for creating a Reddit OAuth app.
func (h *OAuthHandler) SetupHint() string {
	return `Create an app at https://www.reddit.com/prefs/apps:
  1. Choose type "installed app" (leave the secret blank) or "web app"
  2. Set http://localhost:8080/callback as the redirect uri
  3. Use the id under the app name as the client ID`
}
