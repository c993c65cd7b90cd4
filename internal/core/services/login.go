package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/relaykit/connect-cli/internal/core/domain"
	"github.com/relaykit/connect-cli/internal/core/ports/driven"
	"github.com/relaykit/connect-cli/internal/core/ports/driving"
	"github.com/relaykit/connect-cli/internal/logger"
	"github.com/relaykit/connect-cli/internal/oauth1"
)

// Default callback window. Users are mid-browser during this wait, so it
// has to cover a password manager round trip and a 2FA prompt.
const defaultWaitTimeout = 5 * time.Minute

const (
	defaultPortStart = 8080
	defaultPortEnd   = 8180
)

// Ensure LoginService implements the interface.
var _ driving.LoginService = (*LoginService)(nil)

// LoginConfig wires the login orchestration's collaborators.
type LoginConfig struct {
	Apps     driven.AppStore
	Profiles driven.ProfileStore
	Registry *ConnectorRegistry

	// NewListener builds the local callback listener for one attempt.
	NewListener driven.ListenerFactory
	// OpenBrowser launches the user's browser. Optional; failure is
	// non-fatal either way because OnAuthURL always receives the URL.
	OpenBrowser driven.BrowserOpener
	// OnAuthURL receives the authorization URL before the wait begins,
	// so the CLI can print it for manual use. Optional.
	OnAuthURL func(url string)
	// OnTokensObtained observes every successfully persisted profile.
	// Optional.
	OnTokensObtained func(profile *domain.Profile)

	// PortStart and PortEnd bound the callback port search. Zero values
	// use the 8080-8180 default range.
	PortStart int
	PortEnd   int
	// WaitTimeout bounds the callback wait. Zero uses the 5 minute default.
	WaitTimeout time.Duration
}

// LoginService drives the interactive authorization flows and owns the
// resulting profiles.
type LoginService struct {
	cfg LoginConfig
}

// NewLoginService creates the login orchestrator.
func NewLoginService(cfg LoginConfig) *LoginService {
	if cfg.PortStart == 0 {
		cfg.PortStart = defaultPortStart
	}
	if cfg.PortEnd == 0 {
		cfg.PortEnd = defaultPortEnd
	}
	if cfg.WaitTimeout == 0 {
		cfg.WaitTimeout = defaultWaitTimeout
	}
	return &LoginService{cfg: cfg}
}

// Login runs the full interactive flow for an app. Apps with an OAuth2
// client use the PKCE flow; apps with only OAuth1 consumer credentials
// use the three-legged flow.
func (s *LoginService) Login(ctx context.Context, appID string) (*domain.Profile, error) {
	app, err := s.cfg.Apps.Get(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("load app: %w", err)
	}

	switch {
	case app.SupportsOAuth2():
		return s.loginOAuth2(ctx, app)
	case app.SupportsOAuth1():
		return s.loginOAuth1(ctx, app)
	default:
		return nil, fmt.Errorf("%w: app %s has no OAuth client configured", domain.ErrNoCredentials, app.ID)
	}
}

func (s *LoginService) loginOAuth2(ctx context.Context, app *domain.App) (*domain.Profile, error) {
	logger.Section("OAuth2 Login")

	handler, err := s.cfg.Registry.Handler(app.Connector)
	if err != nil {
		return nil, err
	}

	pkce, err := GeneratePKCE()
	if err != nil {
		return nil, fmt.Errorf("generate PKCE challenge: %w", err)
	}

	port, err := FindAvailablePort(s.cfg.PortStart, s.cfg.PortEnd)
	if err != nil {
		return nil, err
	}

	listener := s.cfg.NewListener(port, pkce.State)
	if err := listener.Start(); err != nil {
		return nil, fmt.Errorf("start callback listener: %w", err)
	}
	defer listener.Stop()

	redirectURI := listener.RedirectURI()
	authURL := handler.BuildAuthURL(app, redirectURI, pkce.State, pkce.CodeChallenge)
	s.promptAuthorize(authURL)

	logger.Debug("waiting for callback on port %d", port)
	code, err := listener.WaitForCode(s.cfg.WaitTimeout)
	if err != nil {
		return nil, fmt.Errorf("authorization callback: %w", err)
	}

	tokens, err := handler.ExchangeCode(ctx, app, code, redirectURI, pkce.CodeVerifier)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	account, err := handler.GetUserInfo(ctx, tokens.AccessToken)
	if err != nil {
		logger.Warn("could not fetch account identity: %v", err)
	}

	return s.saveProfile(ctx, app, account, tokens, nil)
}

func (s *LoginService) loginOAuth1(ctx context.Context, app *domain.App) (*domain.Profile, error) {
	logger.Section("OAuth 1.0a Login")

	client := oauth1.NewClient(
		oauth1.Credentials{
			ConsumerKey:    app.OAuth1.ConsumerKey,
			ConsumerSecret: app.OAuth1.ConsumerSecret,
		},
		oauth1.Endpoints{
			RequestTokenURL: app.OAuth1.RequestTokenURL,
			AuthorizeURL:    app.OAuth1.AuthorizeURL,
			AccessTokenURL:  app.OAuth1.AccessTokenURL,
		},
	)

	port, err := FindAvailablePort(s.cfg.PortStart, s.cfg.PortEnd)
	if err != nil {
		return nil, err
	}
	redirectURI := fmt.Sprintf("http://localhost:%d/callback", port)

	reqToken, err := client.RequestToken(ctx, redirectURI)
	if err != nil {
		return nil, fmt.Errorf("obtain request token: %w", err)
	}

	// The request token plays the state role on the redirect back.
	listener := s.cfg.NewListener(port, reqToken.Token)
	if err := listener.Start(); err != nil {
		return nil, fmt.Errorf("start callback listener: %w", err)
	}
	defer listener.Stop()

	s.promptAuthorize(client.AuthorizationURL(reqToken.Token))

	logger.Debug("waiting for callback on port %d", port)
	verifier, err := listener.WaitForCode(s.cfg.WaitTimeout)
	if err != nil {
		return nil, fmt.Errorf("authorization callback: %w", err)
	}

	tokens, err := client.AccessToken(ctx, reqToken.Token, reqToken.Secret, verifier)
	if err != nil {
		return nil, fmt.Errorf("exchange request token: %w", err)
	}

	return s.saveProfile(ctx, app, tokens.ScreenName, nil, tokens)
}

// promptAuthorize surfaces the authorization URL and tries the browser.
func (s *LoginService) promptAuthorize(authURL string) {
	if s.cfg.OnAuthURL != nil {
		s.cfg.OnAuthURL(authURL)
	}
	if s.cfg.OpenBrowser != nil {
		if err := s.cfg.OpenBrowser(authURL); err != nil {
			logger.Warn("could not open browser: %v", err)
		}
	}
}

func (s *LoginService) saveProfile(
	ctx context.Context,
	app *domain.App,
	account string,
	oauth2Tokens *domain.TokenSet,
	oauth1Tokens *domain.OAuth1Tokens,
) (*domain.Profile, error) {
	now := time.Now()
	profile := &domain.Profile{
		ID:                uuid.NewString(),
		AppID:             app.ID,
		Connector:         app.Connector,
		AccountIdentifier: account,
		OAuth2:            oauth2Tokens,
		OAuth1:            oauth1Tokens,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.cfg.Profiles.Save(ctx, *profile); err != nil {
		return nil, fmt.Errorf("persist profile: %w", err)
	}
	logger.Info("profile %s saved for %s", profile.ID, profile.Connector)

	if s.cfg.OnTokensObtained != nil {
		s.cfg.OnTokensObtained(profile)
	}
	return profile, nil
}

// Logout revokes the profile's tokens best-effort and deletes it locally.
func (s *LoginService) Logout(ctx context.Context, profileID string) error {
	profile, err := s.cfg.Profiles.Get(ctx, profileID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	if profile.OAuth2 != nil {
		s.revokeTokens(ctx, profile)
	}

	if err := s.cfg.Profiles.Delete(ctx, profileID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	logger.Info("profile %s deleted", profileID)
	return nil
}

// revokeTokens invalidates the profile's OAuth2 tokens at the provider.
// The user is logging out regardless, so failures are logged and ignored.
func (s *LoginService) revokeTokens(ctx context.Context, profile *domain.Profile) {
	app, err := s.cfg.Apps.Get(ctx, profile.AppID)
	if err != nil {
		logger.Warn("skipping revocation, app lookup failed: %v", err)
		return
	}
	handler, err := s.cfg.Registry.Handler(app.Connector)
	if err != nil {
		logger.Warn("skipping revocation: %v", err)
		return
	}

	if token := profile.OAuth2.RefreshToken; token != "" {
		if err := handler.RevokeToken(ctx, app, token); err != nil {
			logger.Warn("refresh token revocation failed: %v", err)
		}
	}
	if token := profile.OAuth2.AccessToken; token != "" {
		if err := handler.RevokeToken(ctx, app, token); err != nil {
			logger.Warn("access token revocation failed: %v", err)
		}
	}
}
