package publish

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/certcast/core/internal/generate"
	"github.com/certcast/core/internal/social"
)

// fakeMicroblogAuth implements MicroblogAuth with a scripted refresh.
type fakeMicroblogAuth struct {
	token        string
	refreshCalls int
	refreshErr   error
	refreshedTo  string
}

func (f *fakeMicroblogAuth) AccessToken() string { return f.token }

func (f *fakeMicroblogAuth) RefreshOnce(ctx context.Context) error {
	f.refreshCalls++
	if f.refreshErr != nil {
		return f.refreshErr
	}
	f.token = f.refreshedTo
	return nil
}

// fakeNetworkAuth implements NetworkAuth.
type fakeNetworkAuth struct {
	token   string
	expired bool
}

func (f *fakeNetworkAuth) AccessToken() string { return f.token }
func (f *fakeNetworkAuth) MarkExpired()        { f.expired = true }

func shortPost() *generate.GeneratedPost {
	return &generate.GeneratedPost{
		Content:  "Just earned a new certificate!",
		Hashtags: []string{"#learning"},
		Platform: social.PlatformMicroblog,
	}
}

func TestPostToSocialUnsupportedPlatform(t *testing.T) {
	p := NewPublisher(&fakeMicroblogAuth{token: "t"}, &fakeNetworkAuth{token: "t"})
	_, err := p.PostToSocial(context.Background(), social.Platform("mastodon"), shortPost())
	if !errors.Is(err, ErrUnsupportedPlatform) {
		t.Fatalf("expected ErrUnsupportedPlatform, got %v", err)
	}
}

func TestPublishMicroblogNotConnected(t *testing.T) {
	p := NewPublisher(&fakeMicroblogAuth{token: ""}, nil)
	_, err := p.PostToSocial(context.Background(), social.PlatformMicroblog, shortPost())
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestPublishMicroblogTooLong(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("over-length post must be rejected before any network call")
	}))
	defer server.Close()

	p := NewPublisher(&fakeMicroblogAuth{token: "t"}, nil)
	p.SetEndpoints(server.URL, server.URL)

	post := &generate.GeneratedPost{
		Content:  strings.Repeat("x", social.MicroblogMaxLength+1),
		Platform: social.PlatformMicroblog,
	}
	_, err := p.PostToSocial(context.Background(), social.PlatformMicroblog, post)
	if !errors.Is(err, ErrPostTooLong) {
		t.Fatalf("expected ErrPostTooLong, got %v", err)
	}
}

func TestPublishMicroblog(t *testing.T) {
	var gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tweets" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		gotText = body["text"]

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data": {"id": "12345"}}`))
	}))
	defer server.Close()

	p := NewPublisher(&fakeMicroblogAuth{token: "t"}, nil)
	p.SetEndpoints(server.URL, server.URL)
	p.SetMicroblogUsername("certfan")

	result, err := p.PostToSocial(context.Background(), social.PlatformMicroblog, shortPost())
	if err != nil {
		t.Fatalf("PostToSocial: %v", err)
	}
	if result.PostID != "12345" {
		t.Errorf("post id = %q", result.PostID)
	}
	if result.URL != "https://twitter.com/certfan/status/12345" {
		t.Errorf("url = %q", result.URL)
	}
	if gotText != "Just earned a new certificate! #learning" {
		t.Errorf("rendered text = %q", gotText)
	}
}

func TestPublishMicroblogRefreshRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"title": "Unauthorized"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data": {"id": "99"}}`))
	}))
	defer server.Close()

	auth := &fakeMicroblogAuth{token: "stale", refreshedTo: "fresh"}
	p := NewPublisher(auth, nil)
	p.SetEndpoints(server.URL, server.URL)

	result, err := p.PostToSocial(context.Background(), social.PlatformMicroblog, shortPost())
	if err != nil {
		t.Fatalf("PostToSocial: %v", err)
	}
	if result.PostID != "99" {
		t.Errorf("post id = %q", result.PostID)
	}
	if auth.refreshCalls != 1 {
		t.Errorf("refresh calls = %d, want exactly 1", auth.refreshCalls)
	}
	if calls != 2 {
		t.Errorf("publish calls = %d, want 2", calls)
	}
}

func TestPublishMicroblogRefreshFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"title": "Unauthorized"}`))
	}))
	defer server.Close()

	refreshErr := errors.New("refresh rejected")
	auth := &fakeMicroblogAuth{token: "stale", refreshErr: refreshErr}
	p := NewPublisher(auth, nil)
	p.SetEndpoints(server.URL, server.URL)

	_, err := p.PostToSocial(context.Background(), social.PlatformMicroblog, shortPost())
	if !errors.Is(err, refreshErr) {
		t.Fatalf("expected refresh error to surface, got %v", err)
	}
	if auth.refreshCalls != 1 {
		t.Errorf("refresh calls = %d, want exactly 1", auth.refreshCalls)
	}
}

func TestPublishNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Restli-Protocol-Version") != "2.0.0" {
			t.Errorf("missing protocol version header")
		}
		switch r.URL.Path {
		case "/me":
			w.Write([]byte(`{"id": "abc123"}`))
		case "/ugcPosts":
			var payload map[string]interface{}
			json.NewDecoder(r.Body).Decode(&payload)
			if payload["author"] != "urn:li:person:abc123" {
				t.Errorf("author = %v", payload["author"])
			}
			if payload["lifecycleState"] != "PUBLISHED" {
				t.Errorf("lifecycleState = %v", payload["lifecycleState"])
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": "urn:li:share:777"}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer server.Close()

	p := NewPublisher(nil, &fakeNetworkAuth{token: "t"})
	p.SetEndpoints(server.URL, server.URL)

	post := &generate.GeneratedPost{
		Content:  "Proud to share a new certification",
		Hashtags: []string{"#aws", "#cloud"},
		Platform: social.PlatformProfessionalNetwork,
	}
	result, err := p.PostToSocial(context.Background(), social.PlatformProfessionalNetwork, post)
	if err != nil {
		t.Fatalf("PostToSocial: %v", err)
	}
	if result.PostID != "urn:li:share:777" {
		t.Errorf("post id = %q", result.PostID)
	}
	if result.URL != "https://www.linkedin.com/feed/update/urn:li:share:777" {
		t.Errorf("url = %q", result.URL)
	}
}

func TestPublishNetworkAuthExpired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	auth := &fakeNetworkAuth{token: "stale"}
	p := NewPublisher(nil, auth)
	p.SetEndpoints(server.URL, server.URL)

	_, err := p.PostToSocial(context.Background(), social.PlatformProfessionalNetwork, shortPost())
	if !errors.Is(err, ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
	if !auth.expired {
		t.Error("connection not marked expired")
	}
}

func TestRenderPost(t *testing.T) {
	withTags := &generate.GeneratedPost{Content: "hello", Hashtags: []string{"#a", "#b"}}
	if got := RenderPost(withTags); got != "hello #a #b" {
		t.Errorf("RenderPost = %q", got)
	}
	noTags := &generate.GeneratedPost{Content: "hello"}
	if got := RenderPost(noTags); got != "hello" {
		t.Errorf("RenderPost = %q", got)
	}
}
