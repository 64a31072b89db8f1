// Package oauth implements the token lifecycle for the three external
// identity/posting providers: the mail provider (browser identity flow), the
// microblog platform (authorization code + PKCE) and the professional
// network (plain authorization code). Each manager is a small state machine
// over {unauthenticated, authorizing, authenticated, expired} and is the
// sole owner of its credential during a session; dependent components only
// ever receive the current access token by value.
package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

var (
	// ErrNotConfigured indicates the provider's client credentials are
	// missing from settings. Detected locally, never reaches the network.
	ErrNotConfigured = errors.New("oauth provider not configured")
	// ErrStateMismatch indicates the state returned on the callback does
	// not match the one sent. The flow fails as a CSRF rejection.
	ErrStateMismatch = errors.New("oauth state mismatch")
	// ErrNoActiveFlow indicates a callback arrived without a pending
	// authorization.
	ErrNoActiveFlow = errors.New("no authorization in progress")
	// ErrNoRefreshToken indicates a refresh was requested but no refresh
	// token is held.
	ErrNoRefreshToken = errors.New("no refresh token available")
)

// State is the lifecycle state of a token manager.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthorizing     State = "authorizing"
	StateAuthenticated   State = "authenticated"
	StateExpired         State = "expired"
)

// Credential is the provider token set owned by one manager.
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Store persists credentials between sessions. It is an injected capability
// so managers carry no hidden global state and tests can supply doubles.
type Store interface {
	Save(provider string, cred Credential) error
	Load(provider string) (*Credential, error)
	Clear(provider string) error
}

// generateState produces a random state token for CSRF protection.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
