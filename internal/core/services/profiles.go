package services

import (
	"context"
	"fmt"
	"time"

	"github.com/relaykit/connect-cli/internal/core/domain"
	"github.com/relaykit/connect-cli/internal/core/ports/driven"
	"github.com/relaykit/connect-cli/internal/core/ports/driving"
)

// Ensure ProfileService implements the interface.
var _ driving.ProfileService = (*ProfileService)(nil)

// ProfileService manages stored account profiles.
type ProfileService struct {
	store driven.ProfileStore
}

// NewProfileService creates a new profile service.
func NewProfileService(store driven.ProfileStore) *ProfileService {
	return &ProfileService{store: store}
}

// Save creates or updates a profile.
func (s *ProfileService) Save(ctx context.Context, profile domain.Profile) error {
	if profile.ID == "" {
		return fmt.Errorf("%w: profile ID required", domain.ErrInvalidInput)
	}
	profile.UpdatedAt = time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = profile.UpdatedAt
	}
	return s.store.Save(ctx, profile)
}

// Get retrieves a profile by ID.
func (s *ProfileService) Get(ctx context.Context, id string) (*domain.Profile, error) {
	return s.store.Get(ctx, id)
}

// List returns all profiles.
func (s *ProfileService) List(ctx context.Context) ([]domain.Profile, error) {
	return s.store.List(ctx)
}

// Delete removes a profile by ID.
func (s *ProfileService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}
