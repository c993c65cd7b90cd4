package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaykit/connect-cli/internal/adapters/driven/storage/memory"
	"github.com/relaykit/connect-cli/internal/core/domain"
)

func newAppService() (*AppService, *memory.AppStore, *memory.ProfileStore) {
	apps := memory.NewAppStore()
	profiles := memory.NewProfileStore()
	return NewAppService(apps, profiles, NewConnectorRegistry()), apps, profiles
}

func TestAppService_Save(t *testing.T) {
	t.Run("fills connector defaults for empty endpoints", func(t *testing.T) {
		svc, apps, _ := newAppService()
		ctx := context.Background()

		err := svc.Save(ctx, domain.App{
			ID:        "app-1",
			Connector: domain.ConnectorReddit,
			OAuth2:    &domain.OAuth2Config{ClientID: "cid"},
		})
		require.NoError(t, err)

		saved, err := apps.Get(ctx, "app-1")
		require.NoError(t, err)
		assert.Equal(t, "https://www.reddit.com/api/v1/authorize", saved.OAuth2.AuthURL)
		assert.Equal(t, "https://www.reddit.com/api/v1/access_token", saved.OAuth2.TokenURL)
		assert.True(t, saved.OAuth2.UseBasicAuth, "reddit always authenticates the client with Basic auth")
		assert.Contains(t, saved.OAuth2.Scopes, "identity")
	})

	t.Run("caller endpoints win over defaults", func(t *testing.T) {
		svc, apps, _ := newAppService()
		ctx := context.Background()

		err := svc.Save(ctx, domain.App{
			ID:        "app-1",
			Connector: domain.ConnectorXCom,
			OAuth2: &domain.OAuth2Config{
				ClientID: "cid",
				TokenURL: "https://proxy.internal/token",
			},
		})
		require.NoError(t, err)

		saved, err := apps.Get(ctx, "app-1")
		require.NoError(t, err)
		assert.Equal(t, "https://proxy.internal/token", saved.OAuth2.TokenURL)
		assert.Equal(t, "https://x.com/i/oauth2/authorize", saved.OAuth2.AuthURL)
	})

	t.Run("oauth1 defaults", func(t *testing.T) {
		svc, apps, _ := newAppService()
		ctx := context.Background()

		err := svc.Save(ctx, domain.App{
			ID:        "app-1",
			Connector: domain.ConnectorXCom,
			OAuth1:    &domain.OAuth1Config{ConsumerKey: "ck", ConsumerSecret: "cs"},
		})
		require.NoError(t, err)

		saved, err := apps.Get(ctx, "app-1")
		require.NoError(t, err)
		assert.Equal(t, "https://api.x.com/oauth/request_token", saved.OAuth1.RequestTokenURL)
		assert.Equal(t, "https://api.x.com/oauth/access_token", saved.OAuth1.AccessTokenURL)
	})

	t.Run("rejects unknown connector", func(t *testing.T) {
		svc, _, _ := newAppService()

		err := svc.Save(context.Background(), domain.App{
			ID:        "app-1",
			Connector: domain.ConnectorType("myspace"),
			OAuth2:    &domain.OAuth2Config{ClientID: "cid"},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejects app without any client config", func(t *testing.T) {
		svc, _, _ := newAppService()

		err := svc.Save(context.Background(), domain.App{
			ID:        "app-1",
			Connector: domain.ConnectorXCom,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejects empty ID", func(t *testing.T) {
		svc, _, _ := newAppService()

		err := svc.Save(context.Background(), domain.App{Connector: domain.ConnectorXCom})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestAppService_Delete(t *testing.T) {
	t.Run("deletes unused app", func(t *testing.T) {
		svc, _, _ := newAppService()
		ctx := context.Background()

		require.NoError(t, svc.Save(ctx, domain.App{
			ID:        "app-1",
			Connector: domain.ConnectorXCom,
			OAuth2:    &domain.OAuth2Config{ClientID: "cid"},
		}))

		require.NoError(t, svc.Delete(ctx, "app-1"))
		_, err := svc.Get(ctx, "app-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("refuses while a profile references it", func(t *testing.T) {
		svc, _, profiles := newAppService()
		ctx := context.Background()

		require.NoError(t, svc.Save(ctx, domain.App{
			ID:        "app-1",
			Connector: domain.ConnectorXCom,
			OAuth2:    &domain.OAuth2Config{ClientID: "cid"},
		}))
		require.NoError(t, profiles.Save(ctx, domain.Profile{ID: "prof-1", AppID: "app-1"}))

		err := svc.Delete(ctx, "app-1")
		assert.ErrorIs(t, err, domain.ErrInUse)

		_, err = svc.Get(ctx, "app-1")
		assert.NoError(t, err, "app must survive the refused delete")
	})

	t.Run("unknown app", func(t *testing.T) {
		svc, _, _ := newAppService()

		err := svc.Delete(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
