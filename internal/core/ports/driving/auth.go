package driving

import (
	"context"

	"github.com/relaykit/connect-cli/internal/core/domain"
)

// LoginService drives the interactive authorization flows.
type LoginService interface {
	// Login runs the full interactive flow for an app: OAuth2 PKCE when the
	// app has an OAuth2 client, otherwise the OAuth1 three-legged flow.
	// The resulting profile is persisted before returning.
	Login(ctx context.Context, appID string) (*domain.Profile, error)

	// Logout revokes the profile's tokens best-effort and deletes the
	// profile locally. Revocation failure is logged, never fatal; the user
	// is logging out regardless.
	Logout(ctx context.Context, profileID string) error
}

// ProfileService manages stored account profiles.
type ProfileService interface {
	// Save creates or updates a profile.
	Save(ctx context.Context, profile domain.Profile) error

	// Get retrieves a profile by ID.
	Get(ctx context.Context, id string) (*domain.Profile, error)

	// List returns all profiles.
	List(ctx context.Context) ([]domain.Profile, error)

	// Delete removes a profile by ID.
	Delete(ctx context.Context, id string) error
}

// AppService manages registered application credentials.
type AppService interface {
	// Save creates or updates an app.
	Save(ctx context.Context, app domain.App) error

	// Get retrieves an app by ID.
	Get(ctx context.Context, id string) (*domain.App, error)

	// List returns all apps.
	List(ctx context.Context) ([]domain.App, error)

	// Delete removes an app by ID.
	// Returns an error if any profile still uses the app.
	Delete(ctx context.Context, id string) error
}
