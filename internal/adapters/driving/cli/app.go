package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/relaykit/connect-cli/internal/core/domain"
)

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Manage OAuth app credentials",
	Long: `Register, list, and remove OAuth application credentials.

An app holds the client credentials you created in a provider's developer
console. One app can authorize any number of accounts.

Examples:
  # Interactive wizard (prompts for credentials, secrets are not echoed)
  connect app add --connector xcom

  # Non-interactive
  connect app add --connector reddit --name "My Reddit App" --client-id "xxx"

  # OAuth 1.0a consumer credentials for legacy write paths
  connect app add --connector xcom --client-id "xxx" \
    --consumer-key "ck" --consumer-secret "cs"

  connect app list
  connect app remove <app-id>`,
}

var appAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new OAuth app",
	RunE:  runAppAdd,
}

var appListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered apps",
	RunE:  runAppList,
}

var appRemoveCmd = &cobra.Command{
	Use:   "remove [app-id]",
	Short: "Remove a registered app",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppRemove,
}

// Flags for app add.
var (
	appAddName           string
	appAddConnector      string
	appAddClientID       string
	appAddClientSecret   string
	appAddScopes         string
	appAddConsumerKey    string
	appAddConsumerSecret string
)

func init() {
	appAddCmd.Flags().StringVar(
		&appAddName, "name", "", "Name for the app")
	appAddCmd.Flags().StringVar(
		&appAddConnector, "connector", "", "Connector type (xcom, reddit)")
	appAddCmd.Flags().StringVar(
		&appAddClientID, "client-id", "", "OAuth 2.0 client ID")
	appAddCmd.Flags().StringVar(
		&appAddClientSecret, "client-secret", "", "OAuth 2.0 client secret (omit for public clients)")
	appAddCmd.Flags().StringVar(
		&appAddScopes, "scopes", "", "OAuth scopes (comma-separated, connector defaults if not provided)")
	appAddCmd.Flags().StringVar(
		&appAddConsumerKey, "consumer-key", "", "OAuth 1.0a consumer key")
	appAddCmd.Flags().StringVar(
		&appAddConsumerSecret, "consumer-secret", "", "OAuth 1.0a consumer secret")

	appCmd.AddCommand(appAddCmd)
	appCmd.AddCommand(appListCmd)
	appCmd.AddCommand(appRemoveCmd)
	rootCmd.AddCommand(appCmd)
}

//nolint:errcheck // CLI interactive flow
func runAppAdd(cmd *cobra.Command, _ []string) error {
	if appService == nil || registry == nil {
		return errors.New("app service not configured")
	}

	connector := domain.ConnectorType(appAddConnector)
	if appAddConnector == "" {
		return fmt.Errorf("--connector is required (one of: %s)", connectorList())
	}
	handler, err := registry.Handler(connector)
	if err != nil {
		return fmt.Errorf("unknown connector %q (one of: %s)", appAddConnector, connectorList())
	}

	name := appAddName
	if name == "" {
		name = fmt.Sprintf("%s App", connector)
	}

	clientID := appAddClientID
	consumerKey := appAddConsumerKey
	clientSecret := appAddClientSecret
	consumerSecret := appAddConsumerSecret

	// Interactive wizard when no credentials were given on the command line.
	if clientID == "" && consumerKey == "" {
		if hint := handler.SetupHint(); hint != "" {
			cmd.Println(hint)
			cmd.Println()
		}

		reader := bufio.NewReader(os.Stdin)
		cmd.Print("Client ID (blank to skip OAuth 2.0): ")
		input, _ := reader.ReadString('\n')
		clientID = strings.TrimSpace(input)
		if clientID != "" {
			clientSecret, err = promptSecret(cmd, "Client Secret (blank for public clients): ")
			if err != nil {
				return err
			}
		}

		cmd.Print("Consumer Key (blank to skip OAuth 1.0a): ")
		input, _ = reader.ReadString('\n')
		consumerKey = strings.TrimSpace(input)
		if consumerKey != "" {
			consumerSecret, err = promptSecret(cmd, "Consumer Secret: ")
			if err != nil {
				return err
			}
		}
	}

	app := domain.App{
		ID:        uuid.NewString(),
		Name:      name,
		Connector: connector,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if clientID != "" {
		app.OAuth2 = &domain.OAuth2Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
		}
		if appAddScopes != "" {
			scopes := strings.Split(appAddScopes, ",")
			for i := range scopes {
				scopes[i] = strings.TrimSpace(scopes[i])
			}
			app.OAuth2.Scopes = scopes
		}
	}
	if consumerKey != "" {
		app.OAuth1 = &domain.OAuth1Config{
			ConsumerKey:    consumerKey,
			ConsumerSecret: consumerSecret,
		}
	}

	// Save fills endpoint defaults from the connector.
	if err := appService.Save(context.Background(), app); err != nil {
		return fmt.Errorf("failed to register app: %w", err)
	}

	cmd.Printf("App registered: %s\n", app.ID)
	cmd.Printf("Log in with: connect login --app %s\n", app.ID)
	return nil
}

// promptSecret reads a secret without echoing when stdin is a terminal,
// falling back to a plain line read under pipes and tests.
func promptSecret(cmd *cobra.Command, prompt string) (string, error) {
	cmd.Print(prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimSpace(input), nil
}

func runAppList(cmd *cobra.Command, _ []string) error {
	if appService == nil {
		return errors.New("app service not configured")
	}

	apps, err := appService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list apps: %w", err)
	}

	if len(apps) == 0 {
		cmd.Println("No registered apps.")
		cmd.Println("Add one with: connect app add --connector <connector>")
		return nil
	}

	cmd.Println("Registered apps:")
	cmd.Println()
	for i := range apps {
		cmd.Printf("  %s\n", apps[i].ID)
		cmd.Printf("    Name: %s\n", apps[i].Name)
		cmd.Printf("    Connector: %s\n", apps[i].Connector)
		if apps[i].OAuth2 != nil {
			cmd.Printf("    Client ID: %s...\n", truncate(apps[i].OAuth2.ClientID, 20))
			cmd.Printf("    Scopes: %s\n", strings.Join(apps[i].OAuth2.Scopes, ", "))
		}
		if apps[i].OAuth1 != nil {
			cmd.Printf("    Consumer Key: %s...\n", truncate(apps[i].OAuth1.ConsumerKey, 20))
		}
		cmd.Printf("    Created: %s\n", apps[i].CreatedAt.Format(time.RFC3339))
		cmd.Println()
	}
	return nil
}

func runAppRemove(cmd *cobra.Command, args []string) error {
	if appService == nil {
		return errors.New("app service not configured")
	}

	appID := args[0]
	ctx := context.Background()

	app, err := appService.Get(ctx, appID)
	if err != nil {
		return fmt.Errorf("app not found: %w", err)
	}

	if err := appService.Delete(ctx, appID); err != nil {
		if errors.Is(err, domain.ErrInUse) {
			return fmt.Errorf("cannot remove: one or more profiles still use this app (log them out first)")
		}
		return fmt.Errorf("failed to remove app: %w", err)
	}

	cmd.Printf("Removed app: %s (%s)\n", app.Name, appID)
	return nil
}

// truncate truncates a string to the specified length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// connectorList renders the registered connector types for usage messages.
func connectorList() string {
	if registry == nil {
		return ""
	}
	types := registry.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
