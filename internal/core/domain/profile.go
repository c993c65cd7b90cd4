package domain

import "time"

// Profile stores the tokens for one authenticated account on one connector.
// Each profile belongs to exactly one App (the OAuth application used to
// obtain its tokens) and holds OAuth2 tokens, OAuth1 tokens, or both (some
// providers use OAuth1 for legacy write paths alongside OAuth2).
type Profile struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`
	// AppID links to the App whose client credentials obtained these tokens.
	AppID string `json:"app_id"`
	// Connector identifies the provider this profile authenticates against.
	Connector ConnectorType `json:"connector"`

	// AccountIdentifier is the provider-side handle or username, when known.
	AccountIdentifier string `json:"account_identifier,omitempty"`

	// OAuth2 holds OAuth 2.0 tokens. Nil when only OAuth1 is configured.
	OAuth2 *TokenSet `json:"oauth2,omitempty"`

	// OAuth1 holds OAuth 1.0a user tokens. Nil when only OAuth2 is configured.
	OAuth1 *OAuth1Tokens `json:"oauth1,omitempty"`

	// CreatedAt is when the profile was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the profile was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAuthenticated returns true if the profile holds any usable user tokens.
func (p *Profile) IsAuthenticated() bool {
	if p.OAuth2 != nil && p.OAuth2.AccessToken != "" {
		return true
	}
	return p.OAuth1 != nil && p.OAuth1.IsSet()
}

// HasRefreshToken returns true if silent OAuth2 refresh is possible.
func (p *Profile) HasRefreshToken() bool {
	return p.OAuth2 != nil && p.OAuth2.RefreshToken != ""
}

// NeedsRefresh returns true if the OAuth2 token is expired (with skew) and
// a refresh token is available.
func (p *Profile) NeedsRefresh(now time.Time) bool {
	if p.OAuth2 == nil {
		return false
	}
	return !p.OAuth2.Valid(now) && p.OAuth2.RefreshToken != ""
}
