// Package oauth provides the local OAuth callback server and browser
// utilities used during interactive login.
package oauth

import (
	"context"
	"fmt"
	"html"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/relaykit/connect-cli/internal/core/domain"
)

// DefaultWaitTimeout bounds how long a login attempt waits for the
// provider redirect before the listener cleans itself up. Prevents an
// abandoned login from holding the port open indefinitely.
const DefaultWaitTimeout = 5 * time.Minute

// CallbackServer handles the OAuth redirect callback for one login attempt.
// It starts a local HTTP server, captures the first request to /callback,
// validates it, and delivers the authorization code (OAuth2) or verifier
// (OAuth 1.0a). Single-use: after the first callback resolves (valid or
// not) further hits are ignored, and the caller shuts the server down via
// Stop.
type CallbackServer struct {
	mu            sync.Mutex
	port          int
	expectedState string
	handled       bool
	codeChan      chan string
	errChan       chan error
	server        *http.Server
	listener      net.Listener
}

// NewCallbackServer creates a new OAuth callback server.
// The expectedState is compared against the redirect's state parameter.
func NewCallbackServer(port int, expectedState string) *CallbackServer {
	return &CallbackServer{
		port:          port,
		expectedState: expectedState,
		codeChan:      make(chan string, 1),
		errChan:       make(chan error, 1),
	}
}

// Start binds the port and begins serving. If port is 0 an ephemeral port
// is chosen. A port already in use fails fast so a second concurrent login
// attempt cannot interleave with a prior listener's state.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	// Store the actual port (important when port was 0)
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()

	return nil
}

// handleCallback processes the OAuth callback request.
// Validation order: provider error param, then state, then code presence.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.handled {
		s.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	s.handled = true
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html")

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		errDesc := r.URL.Query().Get("error_description")
		s.errChan <- fmt.Errorf("%w: %s - %s", domain.ErrProviderDenied, errParam, errDesc)
		fmt.Fprint(w, resultHTML(fmt.Sprintf("Authorization failed: %s", errDesc), ""))
		return
	}

	// OAuth 1.0a redirects carry oauth_token/oauth_verifier instead of
	// state/code. The request token plays the state role.
	if verifier := r.URL.Query().Get("oauth_verifier"); verifier != "" {
		if token := r.URL.Query().Get("oauth_token"); token != s.expectedState {
			s.errChan <- fmt.Errorf("%w: expected %s, got %s", domain.ErrCSRFMismatch, s.expectedState, token)
			fmt.Fprint(w, resultHTML("Authorization failed: request token mismatch", ""))
			return
		}
		select {
		case s.codeChan <- verifier:
		default:
		}
		fmt.Fprint(w, resultHTML("Authorization successful!", "You can close this window and return to the CLI."))
		return
	}

	state := r.URL.Query().Get("state")
	if state != s.expectedState {
		s.errChan <- fmt.Errorf("%w: expected %s, got %s", domain.ErrCSRFMismatch, s.expectedState, state)
		fmt.Fprint(w, resultHTML("Authorization failed: invalid state parameter", ""))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		s.errChan <- domain.ErrNoAuthCode
		fmt.Fprint(w, resultHTML("Authorization failed: no code received", ""))
		return
	}

	select {
	case s.codeChan <- code:
	default:
	}

	fmt.Fprint(w, resultHTML("Authorization successful!", "You can close this window and return to the CLI."))
}

// WaitForCode blocks until the authorization code is received or timeout.
func (s *CallbackServer) WaitForCode(timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	select {
	case code := <-s.codeChan:
		return code, nil
	case err := <-s.errChan:
		return "", err
	case <-ctx.Done():
		return "", domain.ErrCallbackTimeout
	}
}

// Stop shuts down the callback server. Safe to call more than once and
// from cleanup paths regardless of how the wait ended.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Port returns the port the server is listening on.
func (s *CallbackServer) Port() int {
	return s.port
}

// RedirectURI returns the redirect URI for this callback server.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d/callback", s.port)
}

//nolint:misspell // CSS properties use American spelling (center, color)
func resultHTML(title, message string) string {
	escapedTitle := html.EscapeString(title)
	escapedMessage := html.EscapeString(message)
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>Connect - OAuth Callback</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
            background: #FAFAFA;
        }
        .container {
            text-align: center;
            background: white;
            padding: 48px 64px;
            border-radius: 16px;
            border: 1px solid #C7C8CC;
            box-shadow: 0 4px 24px rgba(0,0,0,0.08);
        }
        h1 { color: #333F50; margin: 0 0 8px 0; font-size: 24px; }
        p { color: #7B8088; margin: 0; font-size: 16px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>`, escapedTitle, escapedMessage)
}

// FindAvailablePort finds an available port in the given range.
func FindAvailablePort(startPort, endPort int) (int, error) {
	for port := startPort; port <= endPort; port++ {
		addr := fmt.Sprintf("127.0.0.1:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", startPort, endPort)
}

// OpenBrowser opens the default browser to the given URL.
// Failure is non-fatal for login; callers also print the URL for manual use.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
