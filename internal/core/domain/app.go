package domain

import "time"

// App represents a registered application's credentials with a provider.
// One App can serve multiple Profiles (accounts), the same way one OAuth
// application in a provider's developer console serves many users.
type App struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`
	// Name is the user-friendly name (e.g., "Work X App").
	Name string `json:"name"`
	// Connector identifies the provider this app is registered with.
	Connector ConnectorType `json:"connector"`

	// OAuth2 holds OAuth 2.0 client configuration. Nil for OAuth1-only apps.
	OAuth2 *OAuth2Config `json:"oauth2,omitempty"`

	// OAuth1 holds OAuth 1.0a consumer credentials. Nil for OAuth2-only apps.
	OAuth1 *OAuth1Config `json:"oauth1,omitempty"`

	// CreatedAt is when the app was registered.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the app was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// OAuth2Config stores OAuth 2.0 client credentials and endpoints.
type OAuth2Config struct {
	// ClientID is the client ID from the provider's developer console.
	ClientID string `json:"client_id"`
	// ClientSecret is the client secret. Empty for public clients.
	ClientSecret string `json:"client_secret,omitempty"`
	// Scopes are the scopes requested at authorization time.
	// Empty falls back to the connector's documented defaults.
	Scopes []string `json:"scopes,omitempty"`
	// AuthURL is the authorization endpoint.
	AuthURL string `json:"auth_url,omitempty"`
	// TokenURL is the token exchange endpoint.
	TokenURL string `json:"token_url,omitempty"`
	// RevokeURL is the token revocation endpoint, when the provider has one.
	RevokeURL string `json:"revoke_url,omitempty"`
	// UseBasicAuth authenticates to the token endpoint with HTTP Basic
	// (clientID:clientSecret) instead of body parameters. Reddit-style
	// installed apps require this even with an empty secret.
	UseBasicAuth bool `json:"use_basic_auth,omitempty"`
}

// OAuth1Config stores OAuth 1.0a consumer credentials and endpoints.
type OAuth1Config struct {
	// ConsumerKey is the app-level key; it does not expire.
	ConsumerKey string `json:"consumer_key"`
	// ConsumerSecret is the app-level secret; it does not expire.
	ConsumerSecret string `json:"consumer_secret"`
	// RequestTokenURL is the request-token endpoint for the three-legged flow.
	RequestTokenURL string `json:"request_token_url,omitempty"`
	// AuthorizeURL is the user-authorization endpoint.
	AuthorizeURL string `json:"authorize_url,omitempty"`
	// AccessTokenURL is the access-token endpoint.
	AccessTokenURL string `json:"access_token_url,omitempty"`
}

// SupportsOAuth2 returns true if the app can drive an OAuth2 login.
func (a *App) SupportsOAuth2() bool {
	return a.OAuth2 != nil && a.OAuth2.ClientID != ""
}

// SupportsOAuth1 returns true if the app can sign OAuth1 requests.
func (a *App) SupportsOAuth1() bool {
	return a.OAuth1 != nil && a.OAuth1.ConsumerKey != "" && a.OAuth1.ConsumerSecret != ""
}
