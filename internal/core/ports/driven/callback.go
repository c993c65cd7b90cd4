package driven

import "time"

// CallbackListener receives a single OAuth authorization response on a
// local port. Implementations are single-use: one Start, one WaitForCode,
// one Stop per login attempt.
type CallbackListener interface {
	// Start binds the local port and begins accepting the redirect.
	Start() error
	// WaitForCode blocks until an authorization code arrives, the
	// provider reports an error, or the timeout elapses.
	WaitForCode(timeout time.Duration) (string, error)
	// Stop shuts the listener down. Safe after WaitForCode returns.
	Stop() error
	// RedirectURI is the URI the provider should redirect to, valid
	// after Start.
	RedirectURI() string
}

// ListenerFactory builds a CallbackListener bound to port (0 picks an
// ephemeral one) that will accept redirects carrying expectedState.
type ListenerFactory func(port int, expectedState string) CallbackListener

// BrowserOpener launches the user's browser at url. Errors are advisory;
// login flows fall back to printing the URL.
type BrowserOpener func(url string) error
