package domain

import "time"

// ExpirySkew is the buffer subtracted from a token's expiry when deciding
// whether it is still usable. A token within this window of expiring is
// treated as expired so a request signed with it cannot race the provider's
// clock. 60 seconds is the tighter of the windows the supported providers
// themselves use.
const ExpirySkew = 60 * time.Second

// PKCEChallenge holds the ephemeral verifier/challenge/state triple for one
// authorization attempt. It is created per login and discarded after the
// code exchange completes or times out.
type PKCEChallenge struct {
	// CodeVerifier is the secret held only in memory (43-128 chars).
	CodeVerifier string
	// CodeChallenge is base64url(SHA256(CodeVerifier)), sent to the provider.
	CodeChallenge string
	// State is the CSRF token compared against the redirect's state param.
	State string
}

// TokenSet holds OAuth 2.0 tokens for one authenticated account.
type TokenSet struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	// Empty means silent refresh is impossible and re-login is required.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// Scope lists the granted scopes. Informational; not enforced here.
	Scope []string `json:"scope,omitempty"`
	// ExpiresAt is when the access token expires. Zero means non-expiring.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Valid reports whether the access token is usable at the given instant,
// honouring ExpirySkew.
func (t *TokenSet) Valid(now time.Time) bool {
	if t.AccessToken == "" {
		return false
	}
	if t.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(t.ExpiresAt.Add(-ExpirySkew))
}

// IsExpired reports whether the token must be refreshed before use.
func (t *TokenSet) IsExpired() bool {
	return !t.Valid(time.Now())
}

// OAuth1Tokens holds user-level OAuth 1.0a tokens obtained via the
// three-legged flow. They carry no expiry; providers honour them until
// explicitly revoked.
type OAuth1Tokens struct {
	// AccessToken is the user's oauth_token.
	AccessToken string `json:"access_token"`
	// AccessTokenSecret is the matching oauth_token_secret.
	AccessTokenSecret string `json:"access_token_secret"`
	// UserID is the provider's numeric user id, when returned.
	UserID string `json:"user_id,omitempty"`
	// ScreenName is the provider's handle for the user, when returned.
	ScreenName string `json:"screen_name,omitempty"`
}

// IsSet reports whether both token and secret are present.
// Safe on a nil receiver.
func (t *OAuth1Tokens) IsSet() bool {
	return t != nil && t.AccessToken != "" && t.AccessTokenSecret != ""
}
