package xcom

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
	defaultAuthURL         = "https://x.com/i/oauth2/authorize"
	defaultTokenURL        = "https://api.x.com/2/oauth2/token"
	defaultRevokeURL       = "https://api.x.com/2/oauth2/revoke"
	defaultRequestTokenURL = "https://api.x.com/oauth/request_token"
	defaultAuthorizeURL    = "https://api.x.com/oauth/authorize"
	defaultAccessTokenURL  = "https://api.x.com/oauth/access_token"

	defaultUserInfoURL = "https://api.x.com/2/users/me"
)

// defaultScopes covers reading and writing posts plus offline.access,
// which X requires for a refresh token to be issued at all.
var defaultScopes = []string{"tweet.read", "tweet.write", "users.read", "offline.access"}

// OAuthHandler implements OAuth operations for X.
type OAuthHandler struct {
	userInfoURL string
}

// NewOAuthHandler creates a new X OAuth handler.
func NewOAuthHandler() *OAuthHandler {
	return &OAuthHandler{userInfoURL: defaultUserInfoURL}
}

// BuildAuthURL constructs the X OAuth authorization URL.
func (h *OAuthHandler) BuildAuthURL(
	app *domain.App,
	redirectURI, state, codeChallenge string,
) string {
	pkce := &domain.PKCEChallenge{State: state, CodeChallenge: codeChallenge}
	return drivenoauth.BuildAuthorizationURL(app.OAuth2, pkce, redirectURI, defaultScopes, nil)
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
// X rotates refresh tokens on every use.
func (h *OAuthHandler) RefreshToken(
	ctx context.Context,
	app *domain.App,
	refreshToken string,
) (*domain.TokenSet, error) {
	return drivenoauth.Refresh(ctx, app.OAuth2, refreshToken)
}

// RevokeToken invalidates a token at X's revocation endpoint.
func (h *OAuthHandler) RevokeToken(ctx context.Context, app *domain.App, token string) error {
	return drivenoauth.Revoke(ctx, app.OAuth2, token, "access_token")
}

// GetUserInfo fetches the authenticated user's handle from X.
func (h *OAuthHandler) GetUserInfo(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.userInfoURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

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
		Data struct {
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode user info: %w", err)
	}
	return payload.Data.Username, nil
}

// DefaultConfig returns X's well-known OAuth endpoints and scopes.
func (h *OAuthHandler) DefaultConfig() driven.OAuthDefaults {
	return driven.OAuthDefaults{
		OAuth2: &domain.OAuth2Config{
			AuthURL:   defaultAuthURL,
			TokenURL:  defaultTokenURL,
			RevokeURL: defaultRevokeURL,
			Scopes:    defaultScopes,
		},
		OAuth1: &domain.OAuth1Config{
			RequestTokenURL: defaultRequestTokenURL,
			AuthorizeURL:    defaultAuthorizeURL,
			AccessTokenURL:  defaultAccessTokenURL,
		},
	}
}

// SetupHint returns guidance for creating an X developer app.
func (h *OAuthHandler) SetupHint() string {
	return `Create an app at https://developer.x.com/en/portal/dashboard:
  1. Enable OAuth 2.0 with type "Native App" (PKCE, no client secret)
  2. Add http://localhost:8080/callback as a redirect URI
  3. For media upload or v1.1 endpoints, also note the consumer key and
     secret from the "Keys and tokens" tab (OAuth 1.0a)`
}
