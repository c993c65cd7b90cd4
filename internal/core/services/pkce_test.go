package services

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePKCE(t *testing.T) {
	t.Run("verifier length within RFC 7636 bounds", func(t *testing.T) {
		pkce, err := GeneratePKCE()

		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(pkce.CodeVerifier), 43, "verifier must be at least 43 characters")
		assert.LessOrEqual(t, len(pkce.CodeVerifier), 128, "verifier must be at most 128 characters")
	})

	t.Run("challenge is S256 of verifier", func(t *testing.T) {
		pkce, err := GeneratePKCE()
		require.NoError(t, err)

		hash := sha256.Sum256([]byte(pkce.CodeVerifier))
		expected := base64.RawURLEncoding.EncodeToString(hash[:])
		assert.Equal(t, expected, pkce.CodeChallenge)
	})

	t.Run("uses base64url encoding without padding", func(t *testing.T) {
		pkce, err := GeneratePKCE()
		require.NoError(t, err)

		for _, s := range []string{pkce.CodeVerifier, pkce.CodeChallenge, pkce.State} {
			assert.False(t, strings.ContainsAny(s, "=+/"), "should be unpadded base64url: %s", s)
			_, decErr := base64.RawURLEncoding.DecodeString(s)
			assert.NoError(t, decErr)
		}
	})

	t.Run("successive attempts never repeat", func(t *testing.T) {
		verifiers := make(map[string]bool)
		states := make(map[string]bool)
		iterations := 100

		for i := 0; i < iterations; i++ {
			pkce, err := GeneratePKCE()
			require.NoError(t, err)

			assert.False(t, verifiers[pkce.CodeVerifier], "should not repeat verifiers")
			assert.False(t, states[pkce.State], "should not repeat states")
			verifiers[pkce.CodeVerifier] = true
			states[pkce.State] = true
		}

		assert.Len(t, verifiers, iterations)
		assert.Len(t, states, iterations)
	})
}

func TestGenerateCodeChallenge(t *testing.T) {
	t.Run("deterministic for same verifier", func(t *testing.T) {
		verifier := "test-verifier-12345"

		assert.Equal(t, generateCodeChallenge(verifier), generateCodeChallenge(verifier))
	})

	t.Run("different verifiers produce different challenges", func(t *testing.T) {
		assert.NotEqual(t, generateCodeChallenge("test-verifier-1"), generateCodeChallenge("test-verifier-2"))
	})

	t.Run("decodes to a 32 byte SHA256 digest", func(t *testing.T) {
		challenge := generateCodeChallenge("test-verifier")

		decoded, err := base64.RawURLEncoding.DecodeString(challenge)
		require.NoError(t, err)
		assert.Equal(t, 32, len(decoded))
	})
}

func TestGenerateState(t *testing.T) {
	t.Run("encodes 32 bytes of entropy", func(t *testing.T) {
		state, err := generateState()
		require.NoError(t, err)

		decoded, err := base64.RawURLEncoding.DecodeString(state)
		require.NoError(t, err)
		assert.Equal(t, 32, len(decoded))
	})

	t.Run("consecutive states differ", func(t *testing.T) {
		state1, err1 := generateState()
		state2, err2 := generateState()

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.NotEqual(t, state1, state2)
	})
}
