// Package reddit implements the OAuth handler for Reddit.
//
// Reddit uses plain OAuth 2.0 code flow with two quirks: the token
// endpoint requires HTTP Basic authentication with the client ID as
// username (an empty password for installed apps), and the
// authorization URL needs duration=permanent or no refresh token is
// issued. Reddit also rejects requests without a descriptive
// User-Agent header.
//
// Apps are created at reddit.com/prefs/apps; "installed app" is the
// right type for a CLI.
package reddit
