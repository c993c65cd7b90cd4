package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaykit/connect-cli/internal/core/domain"
)

func TestBuildAuthorizationURL(t *testing.T) {
	cfg := &domain.OAuth2Config{
		ClientID: "client123",
		AuthURL:  "https://provider.example.com/authorize",
		Scopes:   []string{"read", "identity"},
	}
	pkce := &domain.PKCEChallenge{
		CodeVerifier:  "verifier",
		CodeChallenge: "challenge",
		State:         "state123",
	}

	t.Run("includes all PKCE parameters", func(t *testing.T) {
		raw := BuildAuthorizationURL(cfg, pkce, "http://localhost:8912/callback", nil, nil)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		q := u.Query()

		assert.Equal(t, "code", q.Get("response_type"))
		assert.Equal(t, "client123", q.Get("client_id"))
		assert.Equal(t, "http://localhost:8912/callback", q.Get("redirect_uri"))
		assert.Equal(t, "read identity", q.Get("scope"))
		assert.Equal(t, "state123", q.Get("state"))
		assert.Equal(t, "challenge", q.Get("code_challenge"))
		assert.Equal(t, "S256", q.Get("code_challenge_method"))
	})

	t.Run("falls back to default scopes", func(t *testing.T) {
		bare := &domain.OAuth2Config{ClientID: "c", AuthURL: cfg.AuthURL}
		raw := BuildAuthorizationURL(bare, pkce, "http://localhost/callback", []string{"identity"}, nil)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "identity", u.Query().Get("scope"))
	})

	t.Run("provider extras are appended", func(t *testing.T) {
		raw := BuildAuthorizationURL(cfg, pkce, "http://localhost/callback", nil,
			map[string]string{"duration": "permanent"})

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "permanent", u.Query().Get("duration"))
	})
}

func TestExchange(t *testing.T) {
	t.Run("computes expiry from expires_in", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
			assert.Equal(t, "code1", r.PostForm.Get("code"))
			assert.Equal(t, "verifier1", r.PostForm.Get("code_verifier"))
			assert.Equal(t, "client123", r.PostForm.Get("client_id"), "public client sends client_id in body")

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"AT1","refresh_token":"RT1","token_type":"bearer","expires_in":3600,"scope":"identity read"}`))
		}))
		defer srv.Close()

		cfg := &domain.OAuth2Config{ClientID: "client123", TokenURL: srv.URL}
		before := time.Now()

		tokens, err := Exchange(context.Background(), cfg, "code1", "http://localhost/callback", "verifier1")
		require.NoError(t, err)

		assert.Equal(t, "AT1", tokens.AccessToken)
		assert.Equal(t, "RT1", tokens.RefreshToken)
		assert.Equal(t, []string{"identity", "read"}, tokens.Scope)
		assert.WithinDuration(t, before.Add(3600*time.Second), tokens.ExpiresAt, time.Second)
	})

	t.Run("basic auth client", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok, "expected HTTP Basic client authentication")
			assert.Equal(t, "client123", user)
			assert.Empty(t, pass, "installed apps send an empty secret")

			require.NoError(t, r.ParseForm())
			assert.Empty(t, r.PostForm.Get("client_secret"), "secret never duplicated in the body")

			_, _ = w.Write([]byte(`{"access_token":"AT1","token_type":"bearer"}`))
		}))
		defer srv.Close()

		cfg := &domain.OAuth2Config{ClientID: "client123", TokenURL: srv.URL, UseBasicAuth: true}

		tokens, err := Exchange(context.Background(), cfg, "c", "http://localhost/cb", "v")
		require.NoError(t, err)
		assert.Equal(t, "AT1", tokens.AccessToken)
		assert.True(t, tokens.ExpiresAt.IsZero(), "no expires_in means non-expiring")
	})

	t.Run("non-2xx surfaces raw body and parsed code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"code consumed"}`))
		}))
		defer srv.Close()

		cfg := &domain.OAuth2Config{ClientID: "c", TokenURL: srv.URL}

		_, err := Exchange(context.Background(), cfg, "c", "http://localhost/cb", "v")
		require.Error(t, err)

		var phe *domain.ProviderHTTPError
		require.ErrorAs(t, err, &phe)
		assert.True(t, phe.InvalidGrant())
		assert.Contains(t, phe.Body, "code consumed")
	})

	t.Run("malformed response fails fast", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"token_type":"bearer"}`))
		}))
		defer srv.Close()

		cfg := &domain.OAuth2Config{ClientID: "c", TokenURL: srv.URL}

		_, err := Exchange(context.Background(), cfg, "c", "http://localhost/cb", "v")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing access_token")
	})

	t.Run("missing client ID", func(t *testing.T) {
		_, err := Exchange(context.Background(), &domain.OAuth2Config{}, "c", "http://localhost/cb", "v")
		assert.ErrorIs(t, err, domain.ErrNoCredentials)
	})
}

func TestRefresh(t *testing.T) {
	t.Run("response without rotated refresh token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
			assert.Equal(t, "RT1", r.PostForm.Get("refresh_token"))

			_, _ = w.Write([]byte(`{"access_token":"AT2","token_type":"bearer","expires_in":3600}`))
		}))
		defer srv.Close()

		cfg := &domain.OAuth2Config{ClientID: "c", TokenURL: srv.URL}

		tokens, err := Refresh(context.Background(), cfg, "RT1")
		require.NoError(t, err)

		assert.Equal(t, "AT2", tokens.AccessToken)
		assert.Empty(t, tokens.RefreshToken, "caller retains the previous refresh token")
	})

	t.Run("dead refresh token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
		}))
		defer srv.Close()

		cfg := &domain.OAuth2Config{ClientID: "c", TokenURL: srv.URL}

		_, err := Refresh(context.Background(), cfg, "RT-dead")
		var phe *domain.ProviderHTTPError
		require.ErrorAs(t, err, &phe)
		assert.True(t, phe.InvalidGrant())
	})
}

func TestRevoke(t *testing.T) {
	t.Run("posts token with hint", func(t *testing.T) {
		var gotToken, gotHint string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotToken = r.PostForm.Get("token")
			gotHint = r.PostForm.Get("token_type_hint")
		}))
		defer srv.Close()

		cfg := &domain.OAuth2Config{ClientID: "c", TokenURL: srv.URL, RevokeURL: srv.URL}

		err := Revoke(context.Background(), cfg, "AT1", "access_token")
		require.NoError(t, err)
		assert.Equal(t, "AT1", gotToken)
		assert.Equal(t, "access_token", gotHint)
	})

	t.Run("no endpoint configured", func(t *testing.T) {
		err := Revoke(context.Background(), &domain.OAuth2Config{}, "AT1", "")
		assert.Error(t, err)
	})
}
