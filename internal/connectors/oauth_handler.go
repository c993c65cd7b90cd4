// Package connectors provides the provider-specific pieces of each
// supported platform: OAuth handlers, endpoint defaults, and API quirks.
package connectors

import (
	"context"

	"github.com/relaykit/connect-cli/internal/core/domain"
	"github.com/relaykit/connect-cli/internal/core/ports/driven"
)

// OAuthHandler provides OAuth operations for a provider.
// Implementations are provider-specific (X, Reddit, etc).
// Each handler encapsulates the provider's quirks (e.g. Reddit's
// duration=permanent parameter and HTTP Basic client authentication).
type OAuthHandler interface {
	// BuildAuthURL constructs the OAuth authorization URL with
	// provider-specific params, including the PKCE code challenge.
	BuildAuthURL(app *domain.App, redirectURI, state, codeChallenge string) string

	// ExchangeCode exchanges an authorization code for tokens.
	// Uses the PKCE code verifier for security.
	ExchangeCode(ctx context.Context, app *domain.App, code, redirectURI, codeVerifier string) (*domain.TokenSet, error)

	// RefreshToken refreshes an expired access token using a refresh token.
	// A response without a rotated refresh token leaves RefreshToken empty.
	RefreshToken(ctx context.Context, app *domain.App, refreshToken string) (*domain.TokenSet, error)

	// RevokeToken invalidates a token at the provider. Providers without a
	// revocation endpoint return an error the caller may treat as advisory.
	RevokeToken(ctx context.Context, app *domain.App, token string) error

	// GetUserInfo fetches the account identifier (username) from the provider.
	// Used to identify which account was authenticated.
	GetUserInfo(ctx context.Context, accessToken string) (string, error)

	// DefaultConfig returns default OAuth URLs and scopes for this provider.
	// Used when registering apps to suggest defaults.
	DefaultConfig() driven.OAuthDefaults

	// SetupHint returns guidance text for creating an OAuth app with this
	// provider. Shown during app registration.
	SetupHint() string
}
