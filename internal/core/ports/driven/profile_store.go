package driven

import (
	"context"

	"github.com/relaykit/connect-cli/internal/core/domain"
)

// ProfileStore persists authenticated account profiles. The credential core
// never touches the filesystem directly; it reads tokens through this
// interface before each credential decision and writes back after each
// refresh or login. The store is treated as single-writer, single-process.
type ProfileStore interface {
	// Save stores a profile. Creates if new, updates if exists.
	Save(ctx context.Context, profile domain.Profile) error

	// Get retrieves a profile by ID.
	Get(ctx context.Context, id string) (*domain.Profile, error)

	// GetByConnector retrieves the profile for a connector type.
	// Returns domain.ErrNotFound if none exists.
	GetByConnector(ctx context.Context, connector domain.ConnectorType) (*domain.Profile, error)

	// List returns all profiles.
	List(ctx context.Context) ([]domain.Profile, error)

	// Delete removes a profile by ID.
	Delete(ctx context.Context, id string) error
}

// AppStore persists registered application credentials.
type AppStore interface {
	// Save stores an app. Creates if new, updates if exists.
	Save(ctx context.Context, app domain.App) error

	// Get retrieves an app by ID.
	Get(ctx context.Context, id string) (*domain.App, error)

	// ListByConnector returns apps registered for a connector type.
	ListByConnector(ctx context.Context, connector domain.ConnectorType) ([]domain.App, error)

	// List returns all apps.
	List(ctx context.Context) ([]domain.App, error)

	// Delete removes an app by ID.
	Delete(ctx context.Context, id string) error
}
