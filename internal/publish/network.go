package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/certcast/core/internal/generate"
	"github.com/certcast/core/internal/provider"
	"github.com/tidwall/gjson"
)

// restliProtocolVersion is required on every professional network call.
const restliProtocolVersion = "2.0.0"

// publishNetwork fetches the member profile to obtain the author URN, then
// creates the post. A 401 marks the connection expired and surfaces
// directly: the network manager implements no refresh path.
func (p *Publisher) publishNetwork(ctx context.Context, post *generate.GeneratedPost) (*Result, error) {
	if p.networkAuth == nil || p.networkAuth.AccessToken() == "" {
		return nil, ErrNotConnected
	}
	token := p.networkAuth.AccessToken()

	authorURN, err := p.fetchAuthorURN(ctx, token)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"author":         authorURN,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary": map[string]string{
					"text": RenderPost(post),
				},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.networkURL+"/ugcPosts", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Restli-Protocol-Version", restliProtocolVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network publish failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("network publish failed: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		p.networkAuth.MarkExpired()
		return nil, ErrAuthExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, provider.NewError("professional-network", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	id := gjson.GetBytes(respBody, "id").String()
	if id == "" {
		id = resp.Header.Get("X-RestLi-Id")
	}

	result := &Result{PostID: id}
	if id != "" {
		result.URL = "https://www.linkedin.com/feed/update/" + id
	}
	return result, nil
}

// fetchAuthorURN resolves the authenticated member's opaque identifier.
func (p *Publisher) fetchAuthorURN(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.networkURL+"/me", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Restli-Protocol-Version", restliProtocolVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("profile fetch failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("profile fetch failed: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		p.networkAuth.MarkExpired()
		return "", ErrAuthExpired
	}
	if resp.StatusCode != http.StatusOK {
		return "", provider.NewError("professional-network", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	id := gjson.GetBytes(body, "id").String()
	if id == "" {
		return "", fmt.Errorf("profile fetch failed: response carries no member id")
	}
	return "urn:li:person:" + id, nil
}
