package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent protocol and credential failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInUse indicates an entity cannot be removed while others
	// reference it.
	ErrInUse = errors.New("still in use")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Configuration errors.

	// ErrNoCredentials indicates required app credentials (consumer
	// key/secret or client ID) are missing. Fatal; no retry.
	ErrNoCredentials = errors.New("no credentials configured")

	// ErrNoUserContext indicates a write operation was requested but no
	// user tokens (OAuth1 or OAuth2) exist.
	ErrNoUserContext = errors.New("no user context: login required")

	// Login flow errors. Each is terminal for the attempt in progress.

	// ErrCSRFMismatch indicates the callback state did not match the value
	// sent with the authorization request.
	ErrCSRFMismatch = errors.New("state mismatch: possible CSRF")

	// ErrProviderDenied indicates the user declined authorization or the
	// provider returned an error on the callback.
	ErrProviderDenied = errors.New("authorization denied by provider")

	// ErrNoAuthCode indicates the callback carried no authorization code.
	ErrNoAuthCode = errors.New("no authorization code received")

	// ErrCallbackTimeout indicates no callback arrived within the wait window.
	ErrCallbackTimeout = errors.New("timeout waiting for authorization callback")

	// ErrCallbackConfirm indicates the provider did not confirm the OAuth1
	// callback URL (oauth_callback_confirmed was not "true").
	ErrCallbackConfirm = errors.New("oauth callback not confirmed by provider")

	// Token lifecycle errors.

	// ErrRefreshFailed indicates a token refresh exchange was rejected.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrReloginRequired indicates the refresh token is dead
	// (invalid_grant) and the user must log in again.
	ErrReloginRequired = errors.New("refresh token rejected: login required")
)

// ProviderHTTPError is a non-2xx response from a provider's token, revoke,
// or request-token endpoint. The raw body is retained for diagnostics and
// the parsed OAuth error code (when the body was JSON) lets callers branch
// on invalid_grant without string matching.
type ProviderHTTPError struct {
	// Status is the HTTP status code.
	Status int
	// Body is the raw response body.
	Body string
	// Code is the OAuth "error" field parsed from the body, when present.
	Code string
	// Description is the OAuth "error_description" field, when present.
	Description string
	// RetryAfter is the Retry-After header in seconds, when the provider
	// sent one on a 429. Zero means no hint.
	RetryAfter int
}

// Error implements the error interface.
func (e *ProviderHTTPError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider returned %d: %s - %s", e.Status, e.Code, e.Description)
	}
	return fmt.Sprintf("provider returned %d: %s", e.Status, e.Body)
}

// InvalidGrant reports whether the provider rejected the grant itself
// (dead refresh token or consumed code). Callers must prompt re-login
// instead of retrying.
func (e *ProviderHTTPError) InvalidGrant() bool {
	return e.Code == "invalid_grant"
}

// Transient reports whether the failure may resolve on retry (5xx).
// This core never retries automatically; retry policy belongs to callers.
func (e *ProviderHTTPError) Transient() bool {
	return e.Status >= 500
}
