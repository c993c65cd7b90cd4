// Package domain defines the core entities for connect-cli's credential
// subsystem.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - App: A registered application's OAuth1/OAuth2 credentials
//   - Profile: One authenticated account's tokens on one connector
//   - TokenSet: OAuth 2.0 access/refresh tokens with expiry
//   - OAuth1Tokens: OAuth 1.0a user token and secret
//   - PKCEChallenge: The ephemeral verifier/challenge/state triple
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
