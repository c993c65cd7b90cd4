package driven

import (
	"context"

	"github.com/relaykit/connect-cli/internal/core/domain"
)

// CredentialOptions adjusts a single credential decision.
type CredentialOptions struct {
	// AuthMethod forces a specific method instead of letting the manager
	// decide. AuthMethodAuto (or empty) keeps the default decision order.
	AuthMethod domain.AuthMethod

	// Body holds the form-encoded request body parameters, needed when the
	// request will be signed with OAuth1. Binary or multipart bodies must
	// be left out of the signature and therefore out of this map.
	Body map[string]string
}

// CredentialSource resolves a credential for one outgoing request. It is
// the sole per-request integration point endpoint wrappers use: they supply
// method and URL, and attach the resulting header or bearer token to their
// own HTTP call. Implementations refresh expired tokens transparently.
type CredentialSource interface {
	// CredentialFor returns a credential valid for the given request.
	// A bearer credential is never returned expired without exactly one
	// refresh attempt first.
	CredentialFor(ctx context.Context, method, url string, opts CredentialOptions) (*domain.Credential, error)
}

// TokenRefreshHook is invoked after a successful token refresh so the
// caller can persist the updated token set. The core saves through the
// ProfileStore as well; the hook exists for callers keeping state outside
// the store (observer pattern, injected at construction).
type TokenRefreshHook func(profileID string, tokens *domain.TokenSet)
