package oauth

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ProviderGoogle is the store key for the mail provider connection.
const ProviderGoogle = "google"

// GoogleManager drives the mail provider's interactive identity flow. Only
// the access token is stored; silent refresh is assumed to be handled on the
// provider side, so a 401 from any dependent call transitions straight to
// expired and requires a full re-authorization.
type GoogleManager struct {
	config *oauth2.Config
	store  Store

	mu    sync.Mutex
	state State
	// csrfState is the state token of the authorization in flight.
	csrfState string
	cred      *Credential
}

// NewGoogleManager creates a manager for the mail provider.
func NewGoogleManager(clientID, clientSecret, redirectURL string, store Store) *GoogleManager {
	m := &GoogleManager{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/gmail.readonly",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		store: store,
		state: StateUnauthenticated,
	}
	m.restore()
	return m
}

func (m *GoogleManager) restore() {
	if m.store == nil {
		return
	}
	if cred, err := m.store.Load(ProviderGoogle); err == nil && cred != nil && cred.AccessToken != "" {
		m.cred = cred
		m.state = StateAuthenticated
	}
}

// Provider returns the store key of this manager.
func (m *GoogleManager) Provider() string { return ProviderGoogle }

// State returns the current lifecycle state.
func (m *GoogleManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// BeginAuth starts the authorization flow and returns the redirect URL.
func (m *GoogleManager) BeginAuth() (string, error) {
	if m.config.ClientID == "" || m.config.ClientSecret == "" {
		return "", ErrNotConfigured
	}
	state, err := generateState()
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.csrfState = state
	m.state = StateAuthorizing
	m.mu.Unlock()
	return m.config.AuthCodeURL(state), nil
}

// CompleteAuth validates the callback state and exchanges the code for an
// access token. Only the access token is kept; a refresh token, if any, is
// discarded.
func (m *GoogleManager) CompleteAuth(ctx context.Context, code, state string) error {
	m.mu.Lock()
	expected := m.csrfState
	m.mu.Unlock()

	if expected == "" {
		return ErrNoActiveFlow
	}
	if state != expected {
		m.mu.Lock()
		m.state = StateUnauthenticated
		m.csrfState = ""
		m.mu.Unlock()
		return ErrStateMismatch
	}

	token, err := m.config.Exchange(ctx, code)
	if err != nil {
		m.mu.Lock()
		m.state = StateUnauthenticated
		m.csrfState = ""
		m.mu.Unlock()
		return fmt.Errorf("token exchange failed: %w", err)
	}

	cred := Credential{AccessToken: token.AccessToken}

	m.mu.Lock()
	m.cred = &cred
	m.state = StateAuthenticated
	m.csrfState = ""
	m.mu.Unlock()

	if m.store != nil {
		return m.store.Save(ProviderGoogle, cred)
	}
	return nil
}

// AccessToken returns the current access token by value, or "" when not
// authenticated.
func (m *GoogleManager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return ""
	}
	return m.cred.AccessToken
}

// MarkExpired clears the stored token after a 401 from a dependent call.
// There is no partial refresh path: the next use requires a full re-auth.
func (m *GoogleManager) MarkExpired() {
	m.mu.Lock()
	m.cred = nil
	m.state = StateExpired
	m.mu.Unlock()
	if m.store != nil {
		_ = m.store.Clear(ProviderGoogle)
	}
}

// Logout resets the manager to unauthenticated and clears persisted state.
func (m *GoogleManager) Logout() {
	m.mu.Lock()
	m.cred = nil
	m.state = StateUnauthenticated
	m.csrfState = ""
	m.mu.Unlock()
	if m.store != nil {
		_ = m.store.Clear(ProviderGoogle)
	}
}
