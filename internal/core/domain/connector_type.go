package domain

// ConnectorType identifies a supported provider connector.
type ConnectorType string

const (
	// ConnectorXCom is the x.com-style social platform connector.
	ConnectorXCom ConnectorType = "xcom"
	// ConnectorReddit is the reddit-style forum connector.
	ConnectorReddit ConnectorType = "reddit"
)

// IsValid returns true for known connector types.
func (c ConnectorType) IsValid() bool {
	switch c {
	case ConnectorXCom, ConnectorReddit:
		return true
	default:
		return false
	}
}

// AuthMethod defines how a request is authenticated.
type AuthMethod string

const (
	// AuthMethodAuto lets the credential manager pick the method.
	AuthMethodAuto AuthMethod = "auto"
	// AuthMethodOAuth1 signs requests with OAuth 1.0a HMAC-SHA1.
	AuthMethodOAuth1 AuthMethod = "oauth1"
	// AuthMethodOAuth2 presents an OAuth 2.0 user bearer token.
	AuthMethodOAuth2 AuthMethod = "oauth2"
	// AuthMethodAppOnly presents an app-level bearer token obtained via
	// the client-credentials grant.
	AuthMethodAppOnly AuthMethod = "app-only"
)

// CredentialKind identifies what a resolved credential carries.
type CredentialKind string

const (
	// KindOAuth1Header is a ready-to-attach Authorization: OAuth header.
	KindOAuth1Header CredentialKind = "oauth1-header"
	// KindBearer is a bearer token for an Authorization: Bearer header.
	KindBearer CredentialKind = "bearer"
)

// Credential is the result of a credential decision: either a signed
// OAuth1 header or a valid bearer token. Exactly one of Header or Token is
// set, matching Kind.
type Credential struct {
	Kind   CredentialKind
	Header string
	Token  string
}
