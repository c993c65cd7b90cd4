// Command connect manages OAuth apps and authenticated account profiles
// for social platform APIs.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/relaykit/connect-cli/internal/adapters/driven/auth"
	"github.com/relaykit/connect-cli/internal/adapters/driven/config/file"
	"github.com/relaykit/connect-cli/internal/adapters/driven/storage/sqlite"
	"github.com/relaykit/connect-cli/internal/adapters/driving/cli"
	"github.com/relaykit/connect-cli/internal/adapters/driving/oauth"
	"github.com/relaykit/connect-cli/internal/core/ports/driven"
	"github.com/relaykit/connect-cli/internal/core/services"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	store, err := sqlite.NewStore(config.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	defer store.Close()

	profiles := store.ProfileStore()
	apps := store.AppStore()
	registry := services.NewConnectorRegistry()

	login := services.NewLoginService(services.LoginConfig{
		Apps:     apps,
		Profiles: profiles,
		Registry: registry,
		NewListener: func(port int, expectedState string) driven.CallbackListener {
			return oauth.NewCallbackServer(port, expectedState)
		},
		OpenBrowser: oauth.OpenBrowser,
		OnAuthURL: func(url string) {
			fmt.Printf("Open this URL to authorize:\n\n  %s\n\n", url)
		},
		PortStart:   config.GetInt("callback.port_start"),
		PortEnd:     config.GetInt("callback.port_end"),
		WaitTimeout: time.Duration(config.GetInt("callback.timeout_seconds")) * time.Second,
	})

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Login:    login,
		Profiles: services.NewProfileService(profiles),
		Apps:     services.NewAppService(apps, profiles, registry),
		Registry: registry,
		NewCredentialSource: func(profileID string) driven.CredentialSource {
			return auth.NewManager(auth.Config{
				ProfileID: profileID,
				Profiles:  profiles,
				Apps:      apps,
			})
		},
	})

	return cli.Execute()
}
