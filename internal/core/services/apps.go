package services

import (
	"context"
	"fmt"
	"time"

	"github.com/relaykit/connect-cli/internal/core/domain"
	"github.com/relaykit/connect-cli/internal/core/ports/driven"
	"github.com/relaykit/connect-cli/internal/core/ports/driving"
)

// Ensure AppService implements the interface.
var _ driving.AppService = (*AppService)(nil)

// AppService manages registered application credentials.
type AppService struct {
	apps     driven.AppStore
	profiles driven.ProfileStore
	registry *ConnectorRegistry
}

// NewAppService creates a new app service.
func NewAppService(apps driven.AppStore, profiles driven.ProfileStore, registry *ConnectorRegistry) *AppService {
	return &AppService{apps: apps, profiles: profiles, registry: registry}
}

// Save creates or updates an app, filling endpoint defaults from the
// connector where the caller left them empty.
func (s *AppService) Save(ctx context.Context, app domain.App) error {
	if app.ID == "" {
		return fmt.Errorf("%w: app ID required", domain.ErrInvalidInput)
	}
	if !app.Connector.IsValid() {
		return fmt.Errorf("%w: unknown connector %q", domain.ErrInvalidInput, app.Connector)
	}

	handler, err := s.registry.Handler(app.Connector)
	if err != nil {
		return err
	}
	applyDefaults(&app, handler.DefaultConfig())

	if !app.SupportsOAuth2() && !app.SupportsOAuth1() {
		return fmt.Errorf("%w: app needs an OAuth2 client ID or OAuth1 consumer credentials", domain.ErrInvalidInput)
	}

	app.UpdatedAt = time.Now()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = app.UpdatedAt
	}
	return s.apps.Save(ctx, app)
}

// applyDefaults fills empty endpoint fields from the connector defaults.
// Caller-provided values always win so self-hosted or test endpoints work.
func applyDefaults(app *domain.App, defaults driven.OAuthDefaults) {
	if app.OAuth2 != nil && defaults.OAuth2 != nil {
		if app.OAuth2.AuthURL == "" {
			app.OAuth2.AuthURL = defaults.OAuth2.AuthURL
		}
		if app.OAuth2.TokenURL == "" {
			app.OAuth2.TokenURL = defaults.OAuth2.TokenURL
		}
		if app.OAuth2.RevokeURL == "" {
			app.OAuth2.RevokeURL = defaults.OAuth2.RevokeURL
		}
		if len(app.OAuth2.Scopes) == 0 {
			app.OAuth2.Scopes = defaults.OAuth2.Scopes
		}
		if !app.OAuth2.UseBasicAuth {
			app.OAuth2.UseBasicAuth = defaults.OAuth2.UseBasicAuth
		}
	}
	if app.OAuth1 != nil && defaults.OAuth1 != nil {
		if app.OAuth1.RequestTokenURL == "" {
			app.OAuth1.RequestTokenURL = defaults.OAuth1.RequestTokenURL
		}
		if app.OAuth1.AuthorizeURL == "" {
			app.OAuth1.AuthorizeURL = defaults.OAuth1.AuthorizeURL
		}
		if app.OAuth1.AccessTokenURL == "" {
			app.OAuth1.AccessTokenURL = defaults.OAuth1.AccessTokenURL
		}
	}
}

// Get retrieves an app by ID.
func (s *AppService) Get(ctx context.Context, id string) (*domain.App, error) {
	return s.apps.Get(ctx, id)
}

// List returns all registered apps.
func (s *AppService) List(ctx context.Context) ([]domain.App, error) {
	return s.apps.List(ctx)
}

// Delete removes an app. Fails while profiles still reference it so a
// stored token set never loses the client that refreshes it.
func (s *AppService) Delete(ctx context.Context, id string) error {
	if _, err := s.apps.Get(ctx, id); err != nil {
		return err
	}

	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}
	for _, p := range profiles {
		if p.AppID == id {
			return fmt.Errorf("%w: profile %s still uses app %s, logout first", domain.ErrInUse, p.ID, id)
		}
	}

	return s.apps.Delete(ctx, id)
}
