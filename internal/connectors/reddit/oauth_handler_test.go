package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaykit/connect-cli/internal/core/domain"
)

func testApp(tokenURL string) *domain.App {
	return &domain.App{
		ID:        "app-1",
		Name:      "Test Reddit App",
		Connector: domain.ConnectorReddit,
		OAuth2: &domain.OAuth2Config{
			ClientID:     "reddit-client",
			AuthURL:      defaultAuthURL,
			TokenURL:     tokenURL,
			UseBasicAuth: true,
		},
	}
}

func TestBuildAuthURL(t *testing.T) {
	h := NewOAuthHandler()

	rawURL := h.BuildAuthURL(testApp(defaultTokenURL), "http://localhost:8080/callback", "state-1", "chal")

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	assert.Equal(t, "www.reddit.com", parsed.Host)

	q := parsed.Query()
	assert.Equal(t, "reddit-client", q.Get("client_id"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, "identity read submit", q.Get("scope"))

	// Without duration=permanent Reddit issues no refresh token.
	assert.Equal(t, "permanent", q.Get("duration"))
}

func TestExchangeCode_UsesBasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "reddit-client", user)
		// Installed apps authenticate with an empty secret.
		assert.Empty(t, pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		// Client credentials go in the Basic header, not the body.
		assert.Empty(t, r.FormValue("client_id"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"bearer","expires_in":3600}`))
	}))
	defer server.Close()

	h := NewOAuthHandler()
	tokens, err := h.ExchangeCode(context.Background(), testApp(server.URL),
		"code", "http://localhost:8080/callback", "verifier")
	require.NoError(t, err)
	assert.Equal(t, "at", tokens.AccessToken)
	assert.Equal(t, "rt", tokens.RefreshToken)
}

func TestRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
		assert.Equal(t, "long-lived-rt", r.FormValue("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		// Reddit does not rotate refresh tokens.
		w.Write([]byte(`{"access_token":"fresh-at","token_type":"bearer","expires_in":3600}`))
	}))
	defer server.Close()

	h := NewOAuthHandler()
	tokens, err := h.RefreshToken(context.Background(), testApp(server.URL), "long-lived-rt")
	require.NoError(t, err)
	assert.Equal(t, "fresh-at", tokens.AccessToken)
	assert.Empty(t, tokens.RefreshToken)
}

func TestGetUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer user-at", r.Header.Get("Authorization"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"someuser"}`))
	}))
	defer server.Close()

	h := &OAuthHandler{userInfoURL: server.URL}
	name, err := h.GetUserInfo(context.Background(), "user-at")
	require.NoError(t, err)
	assert.Equal(t, "someuser", name)
}

func TestGetUserInfo_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Unauthorized","error":401}`))
	}))
	defer server.Close()

	h := &OAuthHandler{userInfoURL: server.URL}
	_, err := h.GetUserInfo(context.Background(), "bad-at")
	require.Error(t, err)

	var perr *domain.ProviderHTTPError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusUnauthorized, perr.Status)
}

func TestDefaultConfig(t *testing.T) {
	defaults := NewOAuthHandler().DefaultConfig()

	require.NotNil(t, defaults.OAuth2)
	assert.Equal(t, "https://www.reddit.com/api/v1/authorize", defaults.OAuth2.AuthURL)
	assert.Equal(t, "https://www.reddit.com/api/v1/access_token", defaults.OAuth2.TokenURL)
	assert.Equal(t, "https://www.reddit.com/api/v1/revoke_token", defaults.OAuth2.RevokeURL)
	assert.True(t, defaults.OAuth2.UseBasicAuth)
	assert.Contains(t, defaults.OAuth2.Scopes, "identity")

	assert.Nil(t, defaults.OAuth1)
}
