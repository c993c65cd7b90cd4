package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/relaykit/connect-cli/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored profiles and their token state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if profileService == nil {
		return errors.New("profile service not configured")
	}

	profiles, err := profileService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	if len(profiles) == 0 {
		cmd.Println("No stored profiles.")
		cmd.Println("Log in with: connect login --app <app-id>")
		return nil
	}

	cmd.Println("Stored profiles:")
	cmd.Println()
	for i := range profiles {
		p := &profiles[i]
		cmd.Printf("  %s\n", p.ID)
		cmd.Printf("    Connector: %s\n", p.Connector)
		if p.AccountIdentifier != "" {
			cmd.Printf("    Account: %s\n", p.AccountIdentifier)
		}
		cmd.Printf("    App: %s\n", p.AppID)
		if p.OAuth2 != nil {
			cmd.Printf("    OAuth2: %s\n", oauth2State(p.OAuth2))
		}
		if p.OAuth1.IsSet() {
			cmd.Printf("    OAuth1: user tokens present\n")
		}
		cmd.Println()
	}
	return nil
}

// oauth2State summarizes a token set for display.
func oauth2State(t *domain.TokenSet) string {
	if t.AccessToken == "" {
		return "no access token"
	}

	var expiry string
	switch {
	case t.ExpiresAt.IsZero():
		expiry = "does not expire"
	case t.Valid(time.Now()):
		expiry = fmt.Sprintf("valid until %s", t.ExpiresAt.Format(time.RFC3339))
	default:
		expiry = fmt.Sprintf("expired at %s", t.ExpiresAt.Format(time.RFC3339))
	}

	if t.RefreshToken != "" {
		return expiry + ", refresh token stored"
	}
	return expiry + ", no refresh token"
}
