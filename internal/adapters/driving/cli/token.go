package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relaykit/connect-cli/internal/core/domain"
	"github.com/relaykit/connect-cli/internal/core/ports/driven"
)

var tokenCmd = &cobra.Command{
	Use:   "token [profile-id]",
	Short: "Resolve a request credential for a profile",
	Long: `Resolve the Authorization header a request against the given URL
would carry, refreshing the stored tokens first when they are expired.

Useful for driving curl or other tooling against provider APIs:
  connect token <profile-id> --url https://api.x.com/2/users/me
  connect token <profile-id> --url https://api.x.com/1.1/statuses/update.json \
    --http-method POST --auth oauth1`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

var (
	tokenURL        string
	tokenHTTPMethod string
	tokenAuthMethod string
)

func init() {
	tokenCmd.Flags().StringVar(&tokenURL, "url", "", "Request URL the credential is for (required)")
	tokenCmd.Flags().StringVar(&tokenHTTPMethod, "http-method", http.MethodGet, "HTTP method of the request")
	tokenCmd.Flags().StringVar(&tokenAuthMethod, "auth", "", "Force auth method (oauth1, oauth2, app-only)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	if newCredentialSource == nil {
		return errors.New("credential source not configured")
	}
	if tokenURL == "" {
		return errors.New("--url is required")
	}

	opts := driven.CredentialOptions{}
	switch tokenAuthMethod {
	case "":
	case string(domain.AuthMethodOAuth1), string(domain.AuthMethodOAuth2), string(domain.AuthMethodAppOnly):
		opts.AuthMethod = domain.AuthMethod(tokenAuthMethod)
	default:
		return fmt.Errorf("unknown auth method %q (one of: oauth1, oauth2, app-only)", tokenAuthMethod)
	}

	source := newCredentialSource(args[0])
	cred, err := source.CredentialFor(
		context.Background(), strings.ToUpper(tokenHTTPMethod), tokenURL, opts)
	if err != nil {
		return fmt.Errorf("failed to resolve credential: %w", err)
	}

	cmd.Printf("Kind: %s\n", cred.Kind)
	cmd.Printf("Authorization: %s\n", cred.Header)
	return nil
}
