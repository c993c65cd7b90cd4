// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The login service runs the full authorization flow for a connector:
// it builds the authorization URL, opens the browser, waits on the
// local callback listener, exchanges the returned code or verifier for
// tokens, and persists the resulting profile.
package services
