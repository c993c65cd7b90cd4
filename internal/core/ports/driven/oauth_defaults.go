package driven

import "github.com/relaykit/connect-cli/internal/core/domain"

// OAuthDefaults carries the provider's well-known endpoints and scopes.
// Used to pre-fill app registration so users only supply client credentials.
type OAuthDefaults struct {
	OAuth2 *domain.OAuth2Config
	OAuth1 *domain.OAuth1Config
}
