// Package publish posts finished drafts to the connected platforms and
// returns the created post's identifier and, when derivable, a canonical
// URL.
package publish

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/certcast/core/internal/generate"
	"github.com/certcast/core/internal/social"
)

var (
	// ErrUnsupportedPlatform indicates an unknown platform tag. Detected
	// locally, no network call is made.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrPostTooLong indicates the rendered post exceeds the platform
	// budget. Rejected locally before any network call, since the provider
	// is guaranteed to reject it anyway.
	ErrPostTooLong = errors.New("post exceeds platform length limit")
	// ErrAuthExpired indicates the platform rejected the token and no
	// recovery path remains.
	ErrAuthExpired = errors.New("platform access token expired")
	// ErrNotConnected indicates no access token is held for the platform.
	ErrNotConnected = errors.New("platform not connected")
)

// MicroblogAuth supplies the microblog token and its single silent-refresh
// corrective action.
type MicroblogAuth interface {
	AccessToken() string
	RefreshOnce(ctx context.Context) error
}

// NetworkAuth supplies the professional network token. There is no refresh
// path; a rejected token is only marked expired.
type NetworkAuth interface {
	AccessToken() string
	MarkExpired()
}

// Result describes a successfully created post. URL is best-effort and
// omitted rather than guessed when the platform response is not enough to
// construct one.
type Result struct {
	PostID string `json:"post_id"`
	URL    string `json:"url,omitempty"`
}

// Publisher dispatches posts to provider-specific publish endpoints.
type Publisher struct {
	httpClient   *http.Client
	microblogURL string
	networkURL   string

	microblogAuth MicroblogAuth
	networkAuth   NetworkAuth

	// microblogUsername is used to build the canonical post URL when known.
	microblogUsername string
}

// NewPublisher creates a publisher over the given token managers.
func NewPublisher(mb MicroblogAuth, nw NetworkAuth) *Publisher {
	return &Publisher{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		microblogURL:  "https://api.twitter.com/2",
		networkURL:    "https://api.linkedin.com/v2",
		microblogAuth: mb,
		networkAuth:   nw,
	}
}

// SetEndpoints overrides the provider base URLs. Used by tests.
func (p *Publisher) SetEndpoints(microblogURL, networkURL string) {
	p.microblogURL = strings.TrimSuffix(microblogURL, "/")
	p.networkURL = strings.TrimSuffix(networkURL, "/")
}

// SetMicroblogUsername sets the handle used for canonical microblog URLs.
func (p *Publisher) SetMicroblogUsername(username string) {
	p.microblogUsername = username
}

// PostToSocial publishes the post to the named platform.
func (p *Publisher) PostToSocial(ctx context.Context, platform social.Platform, post *generate.GeneratedPost) (*Result, error) {
	switch platform {
	case social.PlatformMicroblog:
		return p.publishMicroblog(ctx, post)
	case social.PlatformProfessionalNetwork:
		return p.publishNetwork(ctx, post)
	default:
		return nil, ErrUnsupportedPlatform
	}
}

// RenderPost flattens a post into the text actually sent to the platform:
// content plus, when hashtags are present, one space and the space-joined
// tags.
func RenderPost(post *generate.GeneratedPost) string {
	if len(post.Hashtags) == 0 {
		return post.Content
	}
	return post.Content + " " + strings.Join(post.Hashtags, " ")
}
