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
	"github.com/certcast/core/internal/social"
	"github.com/tidwall/gjson"
)

// publishMicroblog pre-validates the rendered length, then posts the text.
// On a 401 it refreshes the token silently once and retries the call exactly
// once; a failed refresh surfaces the error.
func (p *Publisher) publishMicroblog(ctx context.Context, post *generate.GeneratedPost) (*Result, error) {
	if p.microblogAuth == nil || p.microblogAuth.AccessToken() == "" {
		return nil, ErrNotConnected
	}

	text := RenderPost(post)
	if len(text) > social.MicroblogMaxLength {
		return nil, fmt.Errorf("%w: %d > %d", ErrPostTooLong, len(text), social.MicroblogMaxLength)
	}

	status, body, err := p.createTweet(ctx, text, p.microblogAuth.AccessToken())
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		if err := p.microblogAuth.RefreshOnce(ctx); err != nil {
			return nil, err
		}
		status, body, err = p.createTweet(ctx, text, p.microblogAuth.AccessToken())
		if err != nil {
			return nil, err
		}
	}

	if status < 200 || status > 299 {
		return nil, provider.NewError("microblog", status, strings.TrimSpace(string(body)))
	}

	id := gjson.GetBytes(body, "data.id").String()
	result := &Result{PostID: id}
	if id != "" && p.microblogUsername != "" {
		result.URL = fmt.Sprintf("https://twitter.com/%s/status/%s", p.microblogUsername, id)
	}
	return result, nil
}

// createTweet issues one create-post call and returns the raw status/body.
func (p *Publisher) createTweet(ctx context.Context, text, token string) (int, []byte, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.microblogURL+"/tweets", bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("microblog publish failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("microblog publish failed: %w", err)
	}
	return resp.StatusCode, body, nil
}
