package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaykit/connect-cli/internal/core/domain"
)

func TestAppStore_SaveAndGet(t *testing.T) {
	store := NewAppStore()
	ctx := context.Background()

	app := domain.App{
		ID:        "app-1",
		Name:      "my x app",
		Connector: domain.ConnectorXCom,
		OAuth2:    &domain.OAuth2Config{ClientID: "cid"},
	}

	require.NoError(t, store.Save(ctx, app))

	saved, err := store.Get(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, "my x app", saved.Name)
	assert.Equal(t, "cid", saved.OAuth2.ClientID)
}

func TestAppStore_Get_NotFound(t *testing.T) {
	store := NewAppStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAppStore_ListByConnector(t *testing.T) {
	store := NewAppStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.App{ID: "app-1", Connector: domain.ConnectorXCom}))
	require.NoError(t, store.Save(ctx, domain.App{ID: "app-2", Connector: domain.ConnectorReddit}))
	require.NoError(t, store.Save(ctx, domain.App{ID: "app-3", Connector: domain.ConnectorReddit}))

	apps, err := store.ListByConnector(ctx, domain.ConnectorReddit)
	require.NoError(t, err)
	assert.Len(t, apps, 2)

	apps, err = store.ListByConnector(ctx, domain.ConnectorType("mastodon"))
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestAppStore_Delete(t *testing.T) {
	store := NewAppStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.App{ID: "app-1"}))
	require.NoError(t, store.Delete(ctx, "app-1"))

	_, err := store.Get(ctx, "app-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAppStore_List(t *testing.T) {
	store := NewAppStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.App{ID: "app-1"}))
	require.NoError(t, store.Save(ctx, domain.App{ID: "app-2"}))

	apps, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, apps, 2)
}
