// Package auth decides, per request, how to authenticate against a
// provider: an OAuth 1.0a signature header, a user bearer token
// (refreshing it when expired), or an app-only client-credentials token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"

	drivenoauth "github.com/relaykit/connect-cli/internal/adapters/driven/oauth"
	"github.com/relaykit/connect-cli/internal/connectors"
	"github.com/relaykit/connect-cli/internal/core/domain"
	"github.com/relaykit/connect-cli/internal/core/ports/driven"
	"github.com/relaykit/connect-cli/internal/logger"
	"github.com/relaykit/connect-cli/internal/oauth1"
)

// Ensure Manager implements the CredentialSource interface.
var _ driven.CredentialSource = (*Manager)(nil)

// Config wires a Manager's collaborators. All state is injected here;
// the package keeps no globals.
type Config struct {
	// ProfileID selects the user profile. Empty means no user context:
	// only app-only credentials can be produced.
	ProfileID string
	// AppID selects the registered app. Resolved from the profile when
	// empty.
	AppID string

	Profiles driven.ProfileStore
	Apps     driven.AppStore

	// OnTokenRefresh observes every persisted refresh result. Optional.
	OnTokenRefresh driven.TokenRefreshHook

	// NowFunc overrides the clock in tests. Defaults to time.Now.
	NowFunc func() time.Time
}

// Manager produces request credentials for one profile/app pair.
// Safe for concurrent use; refreshes are serialized so concurrent callers
// of an expired token trigger exactly one token endpoint call.
type Manager struct {
	cfg Config

	// refreshMu serializes the refresh slow path. It also guards limiter,
	// which is built lazily once the profile's connector is known.
	refreshMu sync.Mutex
	limiter   *connectors.RateLimiter

	// appOnlyMu guards the lazily built client-credentials source, which
	// caches its token internally.
	appOnlyMu     sync.Mutex
	appOnlySource oauth2.TokenSource
}

// NewManager creates a credential manager.
func NewManager(cfg Config) *Manager {
	if cfg.NowFunc == nil {
		cfg.NowFunc = time.Now
	}
	return &Manager{cfg: cfg}
}

// CredentialFor decides how to authenticate the described request and
// returns a ready-to-use credential.
//
// Decision order: a forced method is honored; otherwise a write verb with
// only OAuth1 user tokens signs with OAuth1; otherwise a valid user bearer
// token wins, refreshing once when expired; otherwise OAuth1 tokens sign
// any verb; finally app-only client credentials serve user-less reads.
func (m *Manager) CredentialFor(
	ctx context.Context,
	method, rawURL string,
	opts driven.CredentialOptions,
) (*domain.Credential, error) {
	profile, app, err := m.load(ctx)
	if err != nil {
		return nil, err
	}

	switch opts.AuthMethod {
	case domain.AuthMethodOAuth1:
		return m.oauth1Header(profile, app, method, rawURL, opts.Body)
	case domain.AuthMethodOAuth2:
		return m.bearer(ctx, profile, app)
	case domain.AuthMethodAppOnly:
		return m.appOnly(ctx, app)
	}

	hasOAuth1 := profile != nil && profile.OAuth1.IsSet() && app != nil && app.SupportsOAuth1()
	hasOAuth2 := profile != nil && profile.OAuth2 != nil && profile.OAuth2.AccessToken != ""

	switch {
	case hasOAuth1 && !hasOAuth2 && isWriteMethod(method):
		return m.oauth1Header(profile, app, method, rawURL, opts.Body)
	case hasOAuth2:
		return m.bearer(ctx, profile, app)
	case hasOAuth1:
		return m.oauth1Header(profile, app, method, rawURL, opts.Body)
	case app != nil && app.OAuth2 != nil && app.OAuth2.ClientSecret != "":
		return m.appOnly(ctx, app)
	default:
		return nil, fmt.Errorf("%w: profile has no tokens and app has no client secret", domain.ErrNoCredentials)
	}
}

// load reads the current profile and app. The profile is re-read on every
// decision so a refresh persisted by another caller is picked up.
func (m *Manager) load(ctx context.Context) (*domain.Profile, *domain.App, error) {
	var profile *domain.Profile
	appID := m.cfg.AppID

	if m.cfg.ProfileID != "" {
		p, err := m.cfg.Profiles.Get(ctx, m.cfg.ProfileID)
		if err != nil {
			return nil, nil, fmt.Errorf("load profile: %w", err)
		}
		profile = p
		if appID == "" {
			appID = p.AppID
		}
	}

	if appID == "" {
		return nil, nil, fmt.Errorf("%w: no profile or app configured", domain.ErrNoUserContext)
	}

	app, err := m.cfg.Apps.Get(ctx, appID)
	if err != nil {
		return nil, nil, fmt.Errorf("load app: %w", err)
	}
	return profile, app, nil
}

// bearer returns a valid user bearer token, refreshing it at most once.
func (m *Manager) bearer(ctx context.Context, profile *domain.Profile, app *domain.App) (*domain.Credential, error) {
	if profile == nil || profile.OAuth2 == nil || profile.OAuth2.AccessToken == "" {
		return nil, fmt.Errorf("%w: no user tokens, run login first", domain.ErrNoUserContext)
	}

	now := m.cfg.NowFunc()
	if profile.OAuth2.Valid(now) {
		return bearerCredential(profile.OAuth2.AccessToken), nil
	}

	if profile.OAuth2.RefreshToken == "" {
		return nil, fmt.Errorf("%w: access token expired and no refresh token stored", domain.ErrReloginRequired)
	}

	tokens, err := m.refresh(ctx, profile.ID, app)
	if err != nil {
		return nil, err
	}
	return bearerCredential(tokens.AccessToken), nil
}

// refresh serializes token refreshes. The profile is re-read under the
// lock so callers queued behind an in-flight refresh reuse its result
// instead of issuing their own token endpoint call.
func (m *Manager) refresh(ctx context.Context, profileID string, app *domain.App) (*domain.TokenSet, error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	profile, err := m.cfg.Profiles.Get(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile.OAuth2 == nil {
		return nil, fmt.Errorf("%w: profile lost its tokens", domain.ErrNoCredentials)
	}

	now := m.cfg.NowFunc()
	if profile.OAuth2.Valid(now) {
		return profile.OAuth2, nil
	}

	// Providers throttle their token endpoints aggressively; pace calls
	// and honor any backoff from an earlier 429.
	if m.limiter == nil {
		m.limiter = connectors.NewRateLimiter(profile.Connector)
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("token endpoint limiter: %w", err)
	}

	logger.Debug("refreshing tokens for profile %s", profileID)
	fresh, err := drivenoauth.Refresh(ctx, app.OAuth2, profile.OAuth2.RefreshToken)
	if err != nil {
		var provErr *domain.ProviderHTTPError
		if errors.As(err, &provErr) {
			if provErr.Status == http.StatusTooManyRequests {
				m.limiter.RecordRateLimitError(provErr.RetryAfter)
			}
			if provErr.InvalidGrant() {
				return nil, fmt.Errorf("%w: refresh token rejected (%s)", domain.ErrReloginRequired, provErr.Description)
			}
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrRefreshFailed, err)
	}

	// Providers that do not rotate refresh tokens omit them from the
	// response; keep the stored one.
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = profile.OAuth2.RefreshToken
	}

	profile.OAuth2 = fresh
	profile.UpdatedAt = m.cfg.NowFunc()
	if err := m.cfg.Profiles.Save(ctx, *profile); err != nil {
		return nil, fmt.Errorf("persist refreshed tokens: %w", err)
	}

	if m.cfg.OnTokenRefresh != nil {
		m.cfg.OnTokenRefresh(profileID, fresh)
	}
	return fresh, nil
}

// appOnly returns an application bearer token from the client-credentials
// grant. The underlying token source caches and renews it.
func (m *Manager) appOnly(ctx context.Context, app *domain.App) (*domain.Credential, error) {
	if app == nil || app.OAuth2 == nil || app.OAuth2.ClientID == "" || app.OAuth2.ClientSecret == "" {
		return nil, fmt.Errorf("%w: app-only auth needs a confidential client", domain.ErrNoCredentials)
	}

	m.appOnlyMu.Lock()
	if m.appOnlySource == nil {
		// The source outlives this request; it caches the token and
		// renews it on later calls.
		m.appOnlySource = drivenoauth.AppTokenSource(context.Background(), app.OAuth2)
	}
	source := m.appOnlySource
	m.appOnlyMu.Unlock()

	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("app-only token: %w", err)
	}
	return bearerCredential(token.AccessToken), nil
}

// oauth1Header signs the described request with the profile's OAuth1
// user tokens.
func (m *Manager) oauth1Header(
	profile *domain.Profile,
	app *domain.App,
	method, rawURL string,
	body map[string]string,
) (*domain.Credential, error) {
	if app == nil || !app.SupportsOAuth1() {
		return nil, fmt.Errorf("%w: app has no OAuth1 consumer credentials", domain.ErrNoCredentials)
	}
	if profile == nil || !profile.OAuth1.IsSet() {
		return nil, fmt.Errorf("%w: no OAuth1 user tokens, run login first", domain.ErrNoUserContext)
	}

	signer := oauth1.NewSigner(oauth1.Credentials{
		ConsumerKey:       app.OAuth1.ConsumerKey,
		ConsumerSecret:    app.OAuth1.ConsumerSecret,
		AccessToken:       profile.OAuth1.AccessToken,
		AccessTokenSecret: profile.OAuth1.AccessTokenSecret,
	})

	params := url.Values{}
	for k, v := range body {
		params.Set(k, v)
	}
	header, err := signer.AuthHeader(method, rawURL, params)
	if err != nil {
		return nil, err
	}

	return &domain.Credential{
		Kind:   domain.KindOAuth1Header,
		Header: header,
	}, nil
}

func bearerCredential(token string) *domain.Credential {
	return &domain.Credential{
		Kind:   domain.KindBearer,
		Header: "Bearer " + token,
		Token:  token,
	}
}

// isWriteMethod reports whether the verb mutates provider state.
func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
