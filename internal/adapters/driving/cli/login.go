package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relaykit/connect-cli/internal/core/domain"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize an account in the browser",
	Long: `Run the interactive authorization flow for a registered app.

Apps with an OAuth 2.0 client use the PKCE flow; apps with only OAuth 1.0a
consumer credentials use the three-legged flow. Either way a local callback
listener receives the redirect and the resulting profile is stored.

Examples:
  connect login --app <app-id>
  connect login --connector reddit   # when one reddit app is registered`,
	RunE: runLogin,
}

var (
	loginApp       string
	loginConnector string
)

func init() {
	loginCmd.Flags().StringVar(&loginApp, "app", "", "App ID to authorize against")
	loginCmd.Flags().StringVar(&loginConnector, "connector", "", "Connector to log in to (when --app is omitted)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	if loginService == nil {
		return errors.New("login service not configured")
	}

	ctx := context.Background()

	appID := loginApp
	if appID == "" {
		resolved, err := resolveApp(ctx, loginConnector)
		if err != nil {
			return err
		}
		appID = resolved
	}

	profile, err := loginService.Login(ctx, appID)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cmd.Printf("Logged in: %s\n", profile.ID)
	if profile.AccountIdentifier != "" {
		cmd.Printf("  Account: %s\n", profile.AccountIdentifier)
	}
	cmd.Printf("  Connector: %s\n", profile.Connector)
	return nil
}

// resolveApp picks the app to authorize when --app was omitted. Only an
// unambiguous match is used; otherwise the user must choose explicitly.
func resolveApp(ctx context.Context, connector string) (string, error) {
	if appService == nil {
		return "", errors.New("app service not configured")
	}

	apps, err := appService.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list apps: %w", err)
	}
	if connector != "" {
		filtered := apps[:0]
		for _, app := range apps {
			if app.Connector == domain.ConnectorType(connector) {
				filtered = append(filtered, app)
			}
		}
		apps = filtered
	}

	switch len(apps) {
	case 0:
		return "", errors.New("no matching app registered; add one with: connect app add")
	case 1:
		return apps[0].ID, nil
	default:
		return "", fmt.Errorf("%d apps match; pick one with --app (see: connect app list)", len(apps))
	}
}
