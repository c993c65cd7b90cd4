// Package oauth1 implements OAuth 1.0a request signing (RFC 5849) and the
// three-legged token acquisition flow.
//
// Signing is a pure computation: given credentials, an HTTP method, a URL,
// and the form-encoded body parameters, AuthHeader produces the
// Authorization header value. The only non-determinism is the nonce and
// timestamp, both injectable for tests.
package oauth1

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // G505: HMAC-SHA1 is mandated by the OAuth 1.0a protocol
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/relaykit/connect-cli/internal/core/domain"
)

// Credentials holds the key material for OAuth 1.0a signing.
// Consumer key and secret are app-level and never expire. Access token and
// secret are user-level, obtained via the three-legged flow, and empty
// during that flow's first leg.
type Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// Signer produces Authorization: OAuth headers for outgoing requests.
type Signer struct {
	creds Credentials

	// nonceFunc and nowFunc exist so tests can pin the two sources of
	// randomness and assert byte-identical signatures.
	nonceFunc func() (string, error)
	nowFunc   func() time.Time
}

// NewSigner creates a signer for the given credentials.
func NewSigner(creds Credentials) *Signer {
	return &Signer{
		creds:     creds,
		nonceFunc: generateNonce,
		nowFunc:   time.Now,
	}
}

// AuthHeader computes the Authorization header value for a request.
//
// The URL's query parameters are included in the signed parameter set; the
// query string itself is stripped from the signed base URL. body holds the
// form-encoded body parameters, if any; binary and multipart bodies are
// excluded from the signature per the OAuth 1.0a spec and must be passed
// as nil.
func (s *Signer) AuthHeader(method, rawURL string, body url.Values) (string, error) {
	if s.creds.ConsumerKey == "" || s.creds.ConsumerSecret == "" {
		return "", fmt.Errorf("%w: consumer key and secret required", domain.ErrNoCredentials)
	}
	return s.authHeader(method, rawURL, body, nil, s.creds.AccessToken, s.creds.AccessTokenSecret)
}

// authHeader signs with an explicit token/secret pair and optional extra
// oauth_* parameters (oauth_callback, oauth_verifier). Shared with the
// three-legged client, which signs with request tokens instead of the
// configured access token.
func (s *Signer) authHeader(
	method, rawURL string,
	body url.Values,
	extra map[string]string,
	token, tokenSecret string,
) (string, error) {
	nonce, err := s.nonceFunc()
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	oauthParams := map[string]string{
		"oauth_consumer_key":     s.creds.ConsumerKey,
		"oauth_nonce":            nonce,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(s.nowFunc().Unix(), 10),
		"oauth_version":          "1.0",
	}
	if token != "" {
		oauthParams["oauth_token"] = token
	}
	for k, v := range extra {
		oauthParams[k] = v
	}

	baseURL, query, err := splitURL(rawURL)
	if err != nil {
		return "", err
	}

	// Full signable set: oauth params + URL query params + body params.
	pairs := make([]paramPair, 0, len(oauthParams)+len(query)+len(body))
	for k, v := range oauthParams {
		pairs = append(pairs, paramPair{percentEncode(k), percentEncode(v)})
	}
	for k, vs := range query {
		for _, v := range vs {
			pairs = append(pairs, paramPair{percentEncode(k), percentEncode(v)})
		}
	}
	for k, vs := range body {
		for _, v := range vs {
			pairs = append(pairs, paramPair{percentEncode(k), percentEncode(v)})
		}
	}

	base := baseString(method, baseURL, pairs)
	key := percentEncode(s.creds.ConsumerSecret) + "&" + percentEncode(tokenSecret)
	oauthParams["oauth_signature"] = sign(key, base)

	return headerValue(oauthParams), nil
}

// paramPair is an already-encoded key/value pair from the signable set.
type paramPair struct {
	key   string
	value string
}

// baseString builds the signature base string:
// METHOD&enc(baseURL)&enc(sortedParams).
func baseString(method, baseURL string, pairs []paramPair) string {
	// Sort by encoded key, then encoded value for ties.
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})

	joined := make([]string, len(pairs))
	for i, p := range pairs {
		joined[i] = p.key + "=" + p.value
	}
	paramString := strings.Join(joined, "&")

	return strings.ToUpper(method) + "&" + percentEncode(baseURL) + "&" + percentEncode(paramString)
}

// sign computes base64(HMAC-SHA1(key, base)).
func sign(key, base string) string {
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// headerValue renders the OAuth parameter map as an Authorization header
// value, params sorted by key, each value percent-encoded and quoted.
func headerValue(oauthParams map[string]string) string {
	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = percentEncode(k) + "=\"" + percentEncode(oauthParams[k]) + "\""
	}
	return "OAuth " + strings.Join(parts, ", ")
}

// splitURL strips the query and fragment from a URL, returning the base URL
// used in the signature and the parsed query parameters. Scheme and host
// are lowercased and default ports dropped per RFC 5849 3.4.1.2.
func splitURL(rawURL string) (string, url.Values, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("parse url: %w", err)
	}
	if !u.IsAbs() {
		return "", nil, fmt.Errorf("%w: url must be absolute: %s", domain.ErrInvalidInput, rawURL)
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	switch {
	case scheme == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case scheme == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}

	return scheme + "://" + host + u.EscapedPath(), u.Query(), nil
}

// percentEncode implements the RFC 3986 encoding OAuth 1.0a mandates.
// Only unreserved characters (A-Za-z0-9-._~) pass through; everything else
// is percent-encoded with uppercase hex. Space becomes %20, never +, and
// the sub-delims !*'() are encoded, unlike most URL encoders.
func percentEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
		} else {
			b.WriteString(fmt.Sprintf("%%%02X", c))
		}
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return c >= 'A' && c <= 'Z' ||
		c >= 'a' && c <= 'z' ||
		c >= '0' && c <= '9' ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

// generateNonce returns 16 cryptographically random bytes hex-encoded.
// Uniqueness relies on randomness alone; no nonce store is kept, which is
// standard practice for HMAC-signed OAuth 1.0a.
func generateNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
