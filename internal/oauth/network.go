package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/certcast/core/internal/provider"
)

// ProviderNetwork is the store key for the professional network connection.
const ProviderNetwork = "professional-network"

const (
	networkAuthorizeURL = "https://www.linkedin.com/oauth/v2/authorization"
	networkTokenURL     = "https://www.linkedin.com/oauth/v2/accessToken"
	networkScopes       = "r_liteprofile r_emailaddress w_member_social"
)

// NetworkManager drives the plain authorization-code flow for the
// professional network. Refresh tokens are not handled: a 401 from a
// dependent call surfaces directly and the connection goes expired.
type NetworkManager struct {
	clientID     string
	clientSecret string
	redirectURL  string
	tokenURL     string
	authorizeURL string
	httpClient   *http.Client
	store        Store

	mu        sync.Mutex
	state     State
	csrfState string
	cred      *Credential
}

// NewNetworkManager creates a manager for the professional network.
func NewNetworkManager(clientID, clientSecret, redirectURL string, store Store) *NetworkManager {
	m := &NetworkManager{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		tokenURL:     networkTokenURL,
		authorizeURL: networkAuthorizeURL,
		httpClient:   http.DefaultClient,
		store:        store,
		state:        StateUnauthenticated,
	}
	m.restore()
	return m
}

// SetEndpoints overrides the provider endpoints. Used by tests.
func (m *NetworkManager) SetEndpoints(authorizeURL, tokenURL string) {
	m.authorizeURL = authorizeURL
	m.tokenURL = tokenURL
}

// SetHTTPClient overrides the HTTP client. Used by tests.
func (m *NetworkManager) SetHTTPClient(c *http.Client) {
	m.httpClient = c
}

func (m *NetworkManager) restore() {
	if m.store == nil {
		return
	}
	if cred, err := m.store.Load(ProviderNetwork); err == nil && cred != nil && cred.AccessToken != "" {
		m.cred = cred
		m.state = StateAuthenticated
	}
}

// Provider returns the store key of this manager.
func (m *NetworkManager) Provider() string { return ProviderNetwork }

// State returns the current lifecycle state.
func (m *NetworkManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// BeginAuth starts the authorization flow and returns the redirect URL.
func (m *NetworkManager) BeginAuth() (string, error) {
	if m.clientID == "" || m.clientSecret == "" {
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

	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", m.clientID)
	query.Set("redirect_uri", m.redirectURL)
	query.Set("scope", networkScopes)
	query.Set("state", state)
	return m.authorizeURL + "?" + query.Encode(), nil
}

// CompleteAuth validates the callback state and exchanges the code, sending
// the client credentials in the form body as the provider requires.
func (m *NetworkManager) CompleteAuth(ctx context.Context, code, state string) error {
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

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", m.redirectURL)
	form.Set("client_id", m.clientID)
	form.Set("client_secret", m.clientSecret)

	req, err := http.NewRequestWithContext(ctx, "POST", m.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("token request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		m.mu.Lock()
		m.state = StateUnauthenticated
		m.csrfState = ""
		m.mu.Unlock()
		return provider.NewError(ProviderNetwork, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("invalid token response: %w", err)
	}

	cred := Credential{AccessToken: parsed.AccessToken, ExpiresIn: parsed.ExpiresIn}

	m.mu.Lock()
	m.cred = &cred
	m.state = StateAuthenticated
	m.csrfState = ""
	m.mu.Unlock()

	if m.store != nil {
		return m.store.Save(ProviderNetwork, cred)
	}
	return nil
}

// AccessToken returns the current access token by value.
func (m *NetworkManager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return ""
	}
	return m.cred.AccessToken
}

// MarkExpired flags the connection after a 401. No refresh path exists.
func (m *NetworkManager) MarkExpired() {
	m.mu.Lock()
	m.cred = nil
	m.state = StateExpired
	m.mu.Unlock()
	if m.store != nil {
		_ = m.store.Clear(ProviderNetwork)
	}
}

// Logout resets the manager and clears persisted state.
func (m *NetworkManager) Logout() {
	m.mu.Lock()
	m.cred = nil
	m.state = StateUnauthenticated
	m.csrfState = ""
	m.mu.Unlock()
	if m.store != nil {
		_ = m.store.Clear(ProviderNetwork)
	}
}
