// Package xcom implements the OAuth handler for X (formerly Twitter).
//
// X supports two independent credential schemes and this package wires
// both:
//
//   - OAuth 2.0 with PKCE for user-context bearer tokens. Tokens expire
//     after two hours; the offline.access scope is requested by default
//     so a refresh token is issued.
//   - OAuth 1.0a user tokens for endpoints that still require request
//     signing, such as media upload.
//
// Apps are created in the X developer portal at developer.x.com. The
// callback URL registered there must match the local listener address,
// typically http://localhost:8080/callback.
package xcom
