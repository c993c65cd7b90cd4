package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout [profile-id]",
	Short: "Revoke a profile's tokens and delete it",
	Long: `Revoke the profile's OAuth 2.0 tokens at the provider (best effort)
and delete the profile locally. OAuth 1.0a tokens have no revocation
endpoint; they are simply forgotten.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	if loginService == nil {
		return errors.New("login service not configured")
	}

	profileID := args[0]
	if err := loginService.Logout(context.Background(), profileID); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	cmd.Printf("Logged out: %s\n", profileID)
	return nil
}
