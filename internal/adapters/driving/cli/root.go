// Package cli implements the connect command tree. Commands only parse
// flags and format output; all behavior lives in the core services, which
// are injected through SetServices before Execute runs.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/relaykit/connect-cli/internal/core/ports/driven"
	"github.com/relaykit/connect-cli/internal/core/ports/driving"
	"github.com/relaykit/connect-cli/internal/core/services"
	"github.com/relaykit/connect-cli/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// Injected services. Nil until SetServices runs; every RunE guards so a
// wiring mistake fails with a message instead of a panic.
var (
	loginService   driving.LoginService
	profileService driving.ProfileService
	appService     driving.AppService
	registry       *services.ConnectorRegistry

	// newCredentialSource builds a per-profile credential source for the
	// token command.
	newCredentialSource func(profileID string) driven.CredentialSource
)

// Services bundles everything the command tree needs.
type Services struct {
	Login    driving.LoginService
	Profiles driving.ProfileService
	Apps     driving.AppService
	Registry *services.ConnectorRegistry

	NewCredentialSource func(profileID string) driven.CredentialSource
}

// SetServices injects the service implementations used by all commands.
func SetServices(s Services) {
	loginService = s.Login
	profileService = s.Profiles
	appService = s.Apps
	registry = s.Registry
	newCredentialSource = s.NewCredentialSource
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "connect",
	Short: "Authenticate accounts for social platform APIs",
	Long: `connect manages OAuth apps and authenticated account profiles for
social platform connectors (x.com, reddit).

Typical workflow:
  connect app add --connector xcom     # register your OAuth app credentials
  connect login --app <app-id>         # authorize an account in the browser
  connect status                       # inspect stored profiles
  connect token <profile-id> --url ... # resolve a request credential`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
