package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaykit/connect-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

// saveTestApp creates an app to satisfy the profiles foreign key.
func saveTestApp(t *testing.T, store *Store, id string) {
	t.Helper()
	err := store.AppStore().Save(context.Background(), domain.App{
		ID:        id,
		Name:      "Test App " + id,
		Connector: domain.ConnectorXCom,
		OAuth2: &domain.OAuth2Config{
			ClientID: "client-" + id,
		},
	})
	require.NoError(t, err)
}

func TestNewStore_Success(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "profiles.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	assert.NoError(t, store.db.Ping())
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening the same database must not re-run applied migrations.
	store, err = NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	var version int
	err = store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

// ==================== App Store Tests ====================

func TestAppStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	apps := store.AppStore()

	app := domain.App{
		ID:        "app-1",
		Name:      "Work X App",
		Connector: domain.ConnectorXCom,
		OAuth2: &domain.OAuth2Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Scopes:       []string{"tweet.read", "tweet.write"},
			AuthURL:      "https://x.com/i/oauth2/authorize",
			TokenURL:     "https://api.x.com/2/oauth2/token",
		},
		OAuth1: &domain.OAuth1Config{
			ConsumerKey:    "ck",
			ConsumerSecret: "cs",
		},
	}
	require.NoError(t, apps.Save(ctx, app))

	got, err := apps.Get(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, "Work X App", got.Name)
	assert.Equal(t, domain.ConnectorXCom, got.Connector)
	require.NotNil(t, got.OAuth2)
	assert.Equal(t, "client-id", got.OAuth2.ClientID)
	assert.Equal(t, []string{"tweet.read", "tweet.write"}, got.OAuth2.Scopes)
	require.NotNil(t, got.OAuth1)
	assert.Equal(t, "ck", got.OAuth1.ConsumerKey)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestAppStore_SaveUpdates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	apps := store.AppStore()

	app := domain.App{
		ID:        "app-1",
		Name:      "Original",
		Connector: domain.ConnectorReddit,
		OAuth2:    &domain.OAuth2Config{ClientID: "old"},
	}
	require.NoError(t, apps.Save(ctx, app))

	app.Name = "Renamed"
	app.OAuth2.ClientID = "new"
	require.NoError(t, apps.Save(ctx, app))

	got, err := apps.Get(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "new", got.OAuth2.ClientID)

	all, err := apps.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAppStore_GetNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.AppStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAppStore_SaveEmptyID(t *testing.T) {
	store := setupTestStore(t)

	err := store.AppStore().Save(context.Background(), domain.App{Name: "no id"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAppStore_NilConfigsRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	apps := store.AppStore()

	require.NoError(t, apps.Save(ctx, domain.App{
		ID:        "oauth1-only",
		Name:      "Legacy",
		Connector: domain.ConnectorXCom,
		OAuth1:    &domain.OAuth1Config{ConsumerKey: "ck", ConsumerSecret: "cs"},
	}))

	got, err := apps.Get(ctx, "oauth1-only")
	require.NoError(t, err)
	assert.Nil(t, got.OAuth2)
	require.NotNil(t, got.OAuth1)
}

func TestAppStore_ListByConnector(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	apps := store.AppStore()

	require.NoError(t, apps.Save(ctx, domain.App{
		ID: "x-app", Name: "X", Connector: domain.ConnectorXCom,
		OAuth2: &domain.OAuth2Config{ClientID: "a"},
	}))
	require.NoError(t, apps.Save(ctx, domain.App{
		ID: "reddit-app", Name: "Reddit", Connector: domain.ConnectorReddit,
		OAuth2: &domain.OAuth2Config{ClientID: "b"},
	}))

	got, err := apps.ListByConnector(ctx, domain.ConnectorReddit)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "reddit-app", got[0].ID)
}

func TestAppStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	apps := store.AppStore()

	require.NoError(t, apps.Save(ctx, domain.App{
		ID: "app-1", Name: "X", Connector: domain.ConnectorXCom,
		OAuth2: &domain.OAuth2Config{ClientID: "a"},
	}))
	require.NoError(t, apps.Delete(ctx, "app-1"))

	_, err := apps.Get(ctx, "app-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== Profile Store Tests ====================

func TestProfileStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	saveTestApp(t, store, "app-1")
	profiles := store.ProfileStore()

	expires := time.Now().UTC().Add(2 * time.Hour).Truncate(time.Second)
	profile := domain.Profile{
		ID:                "profile-1",
		AppID:             "app-1",
		Connector:         domain.ConnectorXCom,
		AccountIdentifier: "someuser",
		OAuth2: &domain.TokenSet{
			AccessToken:  "at",
			RefreshToken: "rt",
			TokenType:    "Bearer",
			ExpiresAt:    expires,
			Scope:        []string{"tweet.read"},
		},
		OAuth1: &domain.OAuth1Tokens{
			AccessToken:       "oauth1-at",
			AccessTokenSecret: "oauth1-secret",
			ScreenName:        "someuser",
		},
	}
	require.NoError(t, profiles.Save(ctx, profile))

	got, err := profiles.Get(ctx, "profile-1")
	require.NoError(t, err)
	assert.Equal(t, "app-1", got.AppID)
	assert.Equal(t, "someuser", got.AccountIdentifier)
	require.NotNil(t, got.OAuth2)
	assert.Equal(t, "at", got.OAuth2.AccessToken)
	assert.Equal(t, "rt", got.OAuth2.RefreshToken)
	assert.True(t, expires.Equal(got.OAuth2.ExpiresAt))
	require.NotNil(t, got.OAuth1)
	assert.Equal(t, "oauth1-secret", got.OAuth1.AccessTokenSecret)
}

func TestProfileStore_SavePersistsRefreshedTokens(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	saveTestApp(t, store, "app-1")
	profiles := store.ProfileStore()

	profile := domain.Profile{
		ID:        "profile-1",
		AppID:     "app-1",
		Connector: domain.ConnectorXCom,
		OAuth2:    &domain.TokenSet{AccessToken: "old-at", RefreshToken: "old-rt"},
	}
	require.NoError(t, profiles.Save(ctx, profile))

	profile.OAuth2 = &domain.TokenSet{AccessToken: "new-at", RefreshToken: "new-rt"}
	require.NoError(t, profiles.Save(ctx, profile))

	got, err := profiles.Get(ctx, "profile-1")
	require.NoError(t, err)
	assert.Equal(t, "new-at", got.OAuth2.AccessToken)
	assert.Equal(t, "new-rt", got.OAuth2.RefreshToken)
}

func TestProfileStore_GetByConnector(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	saveTestApp(t, store, "app-1")
	profiles := store.ProfileStore()

	require.NoError(t, profiles.Save(ctx, domain.Profile{
		ID:        "profile-1",
		AppID:     "app-1",
		Connector: domain.ConnectorXCom,
		OAuth2:    &domain.TokenSet{AccessToken: "at"},
	}))

	got, err := profiles.GetByConnector(ctx, domain.ConnectorXCom)
	require.NoError(t, err)
	assert.Equal(t, "profile-1", got.ID)

	_, err = profiles.GetByConnector(ctx, domain.ConnectorReddit)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfileStore_ListAndDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	saveTestApp(t, store, "app-1")
	profiles := store.ProfileStore()

	require.NoError(t, profiles.Save(ctx, domain.Profile{
		ID: "profile-1", AppID: "app-1", Connector: domain.ConnectorXCom,
		OAuth2: &domain.TokenSet{AccessToken: "a"},
	}))
	require.NoError(t, profiles.Save(ctx, domain.Profile{
		ID: "profile-2", AppID: "app-1", Connector: domain.ConnectorXCom,
		OAuth2: &domain.TokenSet{AccessToken: "b"},
	}))

	all, err := profiles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, profiles.Delete(ctx, "profile-1"))

	all, err = profiles.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "profile-2", all[0].ID)
}

func TestProfileStore_RejectsUnknownApp(t *testing.T) {
	store := setupTestStore(t)

	err := store.ProfileStore().Save(context.Background(), domain.Profile{
		ID:        "orphan",
		AppID:     "no-such-app",
		Connector: domain.ConnectorXCom,
	})
	assert.Error(t, err)
}
