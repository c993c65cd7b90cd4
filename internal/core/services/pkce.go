package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/relaykit/connect-cli/internal/core/domain"
)

// PKCE code verifier entropy in bytes. 48 random bytes encode to a
// 64-character verifier, inside the 43-128 range RFC 7636 requires.
const codeVerifierBytes = 48

// GeneratePKCE creates a fresh verifier, its S256 challenge, and a random
// state parameter for one authorization attempt. Every call produces new
// values; nothing is persisted between attempts.
func GeneratePKCE() (*domain.PKCEChallenge, error) {
	verifier, err := generateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}
	return &domain.PKCEChallenge{
		CodeVerifier:  verifier,
		CodeChallenge: generateCodeChallenge(verifier),
		State:         state,
	}, nil
}

// generateCodeVerifier creates a cryptographically random code verifier for PKCE.
func generateCodeVerifier() (string, error) {
	bytes := make([]byte, codeVerifierBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	// Use base64url encoding without padding
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// generateCodeChallenge creates a S256 code challenge from the verifier.
func generateCodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// generateState creates a random state parameter for CSRF protection.
func generateState() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
