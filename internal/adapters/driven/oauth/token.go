// Package oauth provides the OAuth 2.0 token endpoint client: code
// exchange, refresh, revocation, and app-only client-credentials tokens.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/relaykit/connect-cli/internal/core/domain"
)

// BuildAuthorizationURL constructs the authorization URL for the PKCE flow.
// Pure string construction; extra holds provider-specific parameters
// (e.g. reddit's duration=permanent). Scopes fall back to defaultScopes
// when the config specifies none.
func BuildAuthorizationURL(
	cfg *domain.OAuth2Config,
	pkce *domain.PKCEChallenge,
	redirectURI string,
	defaultScopes []string,
	extra map[string]string,
) string {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}

	params := url.Values{
		"response_type":         {"code"},
		"client_id":             {cfg.ClientID},
		"redirect_uri":          {redirectURI},
		"scope":                 {strings.Join(scopes, " ")},
		"state":                 {pkce.State},
		"code_challenge":        {pkce.CodeChallenge},
		"code_challenge_method": {"S256"},
	}
	for k, v := range extra {
		params.Set(k, v)
	}

	return cfg.AuthURL + "?" + params.Encode()
}

// Exchange trades an authorization code for tokens.
// grant_type=authorization_code with the PKCE code verifier. On a non-2xx
// response the raw body is surfaced via *domain.ProviderHTTPError.
func Exchange(
	ctx context.Context,
	cfg *domain.OAuth2Config,
	code, redirectURI, codeVerifier string,
) (*domain.TokenSet, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: client ID required", domain.ErrNoCredentials)
	}

	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", redirectURI)
	data.Set("code_verifier", codeVerifier)

	return tokenRequest(ctx, cfg, data)
}

// Refresh trades a refresh token for a new token set.
// When the provider omits a rotated refresh_token from the response, the
// returned set's RefreshToken is empty and the caller must retain the
// previous one; rotation is optional server-side.
func Refresh(ctx context.Context, cfg *domain.OAuth2Config, refreshToken string) (*domain.TokenSet, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: client ID required", domain.ErrNoCredentials)
	}

	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	return tokenRequest(ctx, cfg, data)
}

// Revoke invalidates a token at the provider's revocation endpoint.
// Callers treat failure as non-fatal: the user is logging out regardless,
// so local cleanup proceeds either way.
func Revoke(ctx context.Context, cfg *domain.OAuth2Config, token, tokenTypeHint string) error {
	if cfg.RevokeURL == "" {
		return fmt.Errorf("no revocation endpoint configured")
	}

	data := url.Values{}
	data.Set("token", token)
	if tokenTypeHint != "" {
		data.Set("token_type_hint", tokenTypeHint)
	}

	req, err := newTokenEndpointRequest(ctx, cfg, cfg.RevokeURL, data)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("revoke request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return providerError(resp, body)
	}
	return nil
}

// AppTokenSource returns a cached token source for app-only bearer tokens
// via the client-credentials grant. Used for read-only endpoints when no
// user context exists.
func AppTokenSource(ctx context.Context, cfg *domain.OAuth2Config) oauth2.TokenSource {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	if cfg.UseBasicAuth {
		cc.AuthStyle = oauth2.AuthStyleInHeader
	} else {
		cc.AuthStyle = oauth2.AuthStyleInParams
	}
	// TokenSource caches and re-fetches on expiry.
	return cc.TokenSource(ctx)
}

// tokenRequest posts to the token endpoint and parses the response.
func tokenRequest(ctx context.Context, cfg *domain.OAuth2Config, data url.Values) (*domain.TokenSet, error) {
	req, err := newTokenEndpointRequest(ctx, cfg, cfg.TokenURL, data)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, providerError(resp, body)
	}

	return parseTokenResponse(body)
}

// newTokenEndpointRequest builds a form POST with the configured client
// authentication: HTTP Basic for confidential/installed clients, client_id
// in the body for public clients.
func newTokenEndpointRequest(
	ctx context.Context,
	cfg *domain.OAuth2Config,
	endpoint string,
	data url.Values,
) (*http.Request, error) {
	if !cfg.UseBasicAuth {
		data.Set("client_id", cfg.ClientID)
		if cfg.ClientSecret != "" {
			data.Set("client_secret", cfg.ClientSecret)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	if cfg.UseBasicAuth {
		// Reddit-style installed apps use an empty secret here.
		req.SetBasicAuth(cfg.ClientID, cfg.ClientSecret)
	}
	return req, nil
}

// parseTokenResponse validates the provider's token response shape.
// Malformed responses fail fast instead of propagating empty fields.
func parseTokenResponse(body []byte) (*domain.TokenSet, error) {
	var tokenResp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
		Scope        string `json:"scope"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	tokens := &domain.TokenSet{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		TokenType:    tokenResp.TokenType,
	}
	if tokenResp.Scope != "" {
		tokens.Scope = strings.Fields(tokenResp.Scope)
	}
	if tokenResp.ExpiresIn > 0 {
		tokens.ExpiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}
	return tokens, nil
}

// providerError parses the OAuth error shape out of a non-2xx body when
// present, retaining the raw body for diagnostics either way.
func providerError(resp *http.Response, body []byte) *domain.ProviderHTTPError {
	perr := &domain.ProviderHTTPError{Status: resp.StatusCode, Body: string(body)}

	var errResp struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		perr.Code = errResp.Error
		perr.Description = errResp.Description
	}

	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil {
			perr.RetryAfter = secs
		}
	}
	return perr
}
