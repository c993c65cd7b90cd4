package memory

import (
	"context"
	"sync"

	"github.com/relaykit/connect-cli/internal/core/domain"
	"github.com/relaykit/connect-cli/internal/core/ports/driven"
)

// Ensure AppStore implements the interface.
var _ driven.AppStore = (*AppStore)(nil)

// AppStore is an in-memory implementation of driven.AppStore.
type AppStore struct {
	mu   sync.RWMutex
	apps map[string]domain.App
}

// NewAppStore creates a new in-memory app store.
func NewAppStore() *AppStore {
	return &AppStore{
		apps: make(map[string]domain.App),
	}
}

// Save stores or updates an app.
func (s *AppStore) Save(_ context.Context, app domain.App) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[app.ID] = app
	return nil
}

// Get retrieves an app by ID.
func (s *AppStore) Get(_ context.Context, id string) (*domain.App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &app, nil
}

// ListByConnector returns apps registered for a connector type.
func (s *AppStore) ListByConnector(_ context.Context, connector domain.ConnectorType) ([]domain.App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.App, 0)
	for _, app := range s.apps {
		if app.Connector == connector {
			result = append(result, app)
		}
	}
	return result, nil
}

// List returns all registered apps.
func (s *AppStore) List(_ context.Context) ([]domain.App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.App, 0, len(s.apps))
	for _, app := range s.apps {
		result = append(result, app)
	}
	return result, nil
}

// Delete removes an app.
func (s *AppStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.apps, id)
	return nil
}
