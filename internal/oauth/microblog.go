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

// ProviderMicroblog is the store key for the microblog connection.
const ProviderMicroblog = "microblog"

const (
	microblogAuthorizeURL = "https://twitter.com/i/oauth2/authorize"
	microblogTokenURL     = "https://api.twitter.com/2/oauth2/token"
	microblogScopes       = "tweet.read tweet.write users.read offline.access"
)

// MicroblogManager drives the full authorization-code + PKCE flow for the
// microblog platform. On a 401 from a dependent call the holder may refresh
// silently exactly once via RefreshOnce; a failed refresh transitions to
// expired with no further retries.
type MicroblogManager struct {
	clientID    string
	redirectURL string
	tokenURL    string
	authorizeURL string
	httpClient  *http.Client
	store       Store

	mu        sync.Mutex
	state     State
	csrfState string
	verifier  string
	cred      *Credential
}

// NewMicroblogManager creates a manager for the microblog platform.
func NewMicroblogManager(clientID, redirectURL string, store Store) *MicroblogManager {
	m := &MicroblogManager{
		clientID:     clientID,
		redirectURL:  redirectURL,
		tokenURL:     microblogTokenURL,
		authorizeURL: microblogAuthorizeURL,
		httpClient:   http.DefaultClient,
		store:        store,
		state:        StateUnauthenticated,
	}
	m.restore()
	return m
}

// SetEndpoints overrides the provider endpoints. Used by tests.
func (m *MicroblogManager) SetEndpoints(authorizeURL, tokenURL string) {
	m.authorizeURL = authorizeURL
	m.tokenURL = tokenURL
}

// SetHTTPClient overrides the HTTP client. Used by tests.
func (m *MicroblogManager) SetHTTPClient(c *http.Client) {
	m.httpClient = c
}

func (m *MicroblogManager) restore() {
	if m.store == nil {
		return
	}
	if cred, err := m.store.Load(ProviderMicroblog); err == nil && cred != nil && cred.AccessToken != "" {
		m.cred = cred
		m.state = StateAuthenticated
	}
}

// Provider returns the store key of this manager.
func (m *MicroblogManager) Provider() string { return ProviderMicroblog }

// State returns the current lifecycle state.
func (m *MicroblogManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// BeginAuth generates a fresh verifier and state, and returns the authorize
// redirect URL carrying the S256 code challenge.
func (m *MicroblogManager) BeginAuth() (string, error) {
	if m.clientID == "" {
		return "", ErrNotConfigured
	}
	verifier, err := GenerateCodeVerifier()
	if err != nil {
		return "", err
	}
	state, err := generateState()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.verifier = verifier
	m.csrfState = state
	m.state = StateAuthorizing
	m.mu.Unlock()

	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", m.clientID)
	query.Set("redirect_uri", m.redirectURL)
	query.Set("scope", microblogScopes)
	query.Set("state", state)
	query.Set("code_challenge", CodeChallenge(verifier))
	query.Set("code_challenge_method", "S256")
	return m.authorizeURL + "?" + query.Encode(), nil
}

// CompleteAuth validates the returned state against the one sent (exact
// match, or the flow fails as a CSRF rejection) and exchanges the code for
// the token set.
func (m *MicroblogManager) CompleteAuth(ctx context.Context, code, state string) error {
	m.mu.Lock()
	expected := m.csrfState
	verifier := m.verifier
	m.mu.Unlock()

	if expected == "" {
		return ErrNoActiveFlow
	}
	if state != expected {
		m.mu.Lock()
		m.state = StateUnauthenticated
		m.csrfState = ""
		m.verifier = ""
		m.mu.Unlock()
		return ErrStateMismatch
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", m.clientID)
	form.Set("redirect_uri", m.redirectURL)
	form.Set("code_verifier", verifier)

	cred, err := m.requestToken(ctx, form)
	if err != nil {
		m.mu.Lock()
		m.state = StateUnauthenticated
		m.csrfState = ""
		m.verifier = ""
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.cred = cred
	m.state = StateAuthenticated
	m.csrfState = ""
	m.verifier = ""
	m.mu.Unlock()

	if m.store != nil {
		return m.store.Save(ProviderMicroblog, *cred)
	}
	return nil
}

// RefreshOnce exchanges the refresh token for a new token set. It is called
// at most once per failed dependent call; when the refresh itself fails the
// manager transitions to expired and the error surfaces.
func (m *MicroblogManager) RefreshOnce(ctx context.Context) error {
	m.mu.Lock()
	cred := m.cred
	m.mu.Unlock()

	if cred == nil || cred.RefreshToken == "" {
		m.markExpired()
		return ErrNoRefreshToken
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", cred.RefreshToken)
	form.Set("client_id", m.clientID)

	refreshed, err := m.requestToken(ctx, form)
	if err != nil {
		m.markExpired()
		return err
	}
	// Providers may omit the refresh token on refresh; keep the old one.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = cred.RefreshToken
	}

	m.mu.Lock()
	m.cred = refreshed
	m.state = StateAuthenticated
	m.mu.Unlock()

	if m.store != nil {
		return m.store.Save(ProviderMicroblog, *refreshed)
	}
	return nil
}

// requestToken posts a form-encoded grant to the token endpoint.
func (m *MicroblogManager) requestToken(ctx context.Context, form url.Values) (*Credential, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", m.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, provider.NewError(ProviderMicroblog, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("invalid token response: %w", err)
	}
	return &Credential{
		AccessToken:  parsed.AccessToken,
		RefreshToken: parsed.RefreshToken,
		ExpiresIn:    parsed.ExpiresIn,
	}, nil
}

// AccessToken returns the current access token by value.
func (m *MicroblogManager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return ""
	}
	return m.cred.AccessToken
}

func (m *MicroblogManager) markExpired() {
	m.mu.Lock()
	m.state = StateExpired
	m.mu.Unlock()
}

// Logout resets the manager and clears persisted state.
func (m *MicroblogManager) Logout() {
	m.mu.Lock()
	m.cred = nil
	m.state = StateUnauthenticated
	m.csrfState = ""
	m.verifier = ""
	m.mu.Unlock()
	if m.store != nil {
		_ = m.store.Clear(ProviderMicroblog)
	}
}
