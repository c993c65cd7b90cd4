package oauth1

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/relaykit/connect-cli/internal/core/domain"
)

// Endpoints holds the provider's OAuth 1.0a handshake URLs.
type Endpoints struct {
	// RequestTokenURL is where the temporary request token is obtained.
	RequestTokenURL string
	// AuthorizeURL is where the user approves the request token.
	AuthorizeURL string
	// AccessTokenURL is where the approved token is exchanged.
	AccessTokenURL string
}

// RequestToken is the temporary credential from the first leg of the flow.
type RequestToken struct {
	Token             string
	Secret            string
	CallbackConfirmed bool
}

// Client drives the three-legged OAuth 1.0a token acquisition handshake.
// It is used only during interactive login, never per-request.
type Client struct {
	signer     *Signer
	endpoints  Endpoints
	httpClient *http.Client
}

// NewClient creates a three-legged flow client. Only consumer credentials
// are needed; user tokens are the flow's output.
func NewClient(creds Credentials, endpoints Endpoints) *Client {
	return &Client{
		signer:     NewSigner(creds),
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// RequestToken obtains a temporary request token, signing with consumer
// credentials only. Fails unless the provider confirms the callback URL.
func (c *Client) RequestToken(ctx context.Context, callbackURL string) (*RequestToken, error) {
	if c.signer.creds.ConsumerKey == "" || c.signer.creds.ConsumerSecret == "" {
		return nil, fmt.Errorf("%w: consumer key and secret required", domain.ErrNoCredentials)
	}

	header, err := c.signer.authHeader(
		http.MethodPost, c.endpoints.RequestTokenURL, nil,
		map[string]string{"oauth_callback": callbackURL},
		"", "",
	)
	if err != nil {
		return nil, err
	}

	values, err := c.post(ctx, c.endpoints.RequestTokenURL, header)
	if err != nil {
		return nil, fmt.Errorf("request token: %w", err)
	}

	token := &RequestToken{
		Token:             values.Get("oauth_token"),
		Secret:            values.Get("oauth_token_secret"),
		CallbackConfirmed: values.Get("oauth_callback_confirmed") == "true",
	}
	if !token.CallbackConfirmed {
		return nil, domain.ErrCallbackConfirm
	}
	if token.Token == "" || token.Secret == "" {
		return nil, fmt.Errorf("request token response missing oauth_token fields")
	}
	return token, nil
}

// AuthorizationURL returns the URL the user visits to approve the request
// token. Pure string formatting.
func (c *Client) AuthorizationURL(requestToken string) string {
	return c.endpoints.AuthorizeURL + "?oauth_token=" + url.QueryEscape(requestToken)
}

// AccessToken exchanges an approved request token and verifier for the
// final user tokens, signing with consumer credentials plus the request
// token and its secret.
func (c *Client) AccessToken(
	ctx context.Context,
	requestToken, requestSecret, verifier string,
) (*domain.OAuth1Tokens, error) {
	header, err := c.signer.authHeader(
		http.MethodPost, c.endpoints.AccessTokenURL, nil,
		map[string]string{"oauth_verifier": verifier},
		requestToken, requestSecret,
	)
	if err != nil {
		return nil, err
	}

	values, err := c.post(ctx, c.endpoints.AccessTokenURL, header)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}

	tokens := &domain.OAuth1Tokens{
		AccessToken:       values.Get("oauth_token"),
		AccessTokenSecret: values.Get("oauth_token_secret"),
		UserID:            values.Get("user_id"),
		ScreenName:        values.Get("screen_name"),
	}
	if !tokens.IsSet() {
		return nil, fmt.Errorf("access token response missing oauth_token fields")
	}
	return tokens, nil
}

// post performs a signed POST and parses the form-encoded response body.
func (c *Client) post(ctx context.Context, endpoint, authHeader string) (url.Values, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", authHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.ProviderHTTPError{Status: resp.StatusCode, Body: string(body)}
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return values, nil
}
