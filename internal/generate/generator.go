package generate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/certcast/core/internal/provider"
	"github.com/certcast/core/internal/social"
)

// Tone is the requested writing style for a generated post.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneExcited      Tone = "excited"
)

// Request describes one post generation. Transient, never persisted.
type Request struct {
	CertificateContent string          `json:"certificate_content"`
	Platform           social.Platform `json:"platform"`
	Tone               Tone            `json:"tone"`
	IncludeHashtags    bool            `json:"include_hashtags"`
	CustomMessage      string          `json:"custom_message"`
}

// GeneratedPost is the structured result of one generation.
type GeneratedPost struct {
	Content        string          `json:"content"`
	Hashtags       []string        `json:"hashtags"`
	Platform       social.Platform `json:"platform"`
	CharacterCount int             `json:"character_count"`
}

const (
	microblogMaxTokens = 200
	defaultMaxTokens   = 400
	ellipsis           = "..."
)

// GeneratePost builds the prompt pair for the request, sends one generation
// call, and parses the reply. The microblog length invariant is enforced
// here: content is truncated (never hashtags) so that the rendered post fits
// the 280-character budget.
func (c *Client) GeneratePost(req Request) (*GeneratedPost, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	messages := []ChatMessage{
		{Role: "system", Content: buildSystemPrompt(req.Platform)},
		{Role: "user", Content: buildUserPrompt(req)},
	}

	maxTokens := defaultMaxTokens
	if req.Platform == social.PlatformMicroblog {
		maxTokens = microblogMaxTokens
	}

	reply, err := c.sendChatRequest(messages, maxTokens)
	if err != nil {
		return nil, err
	}

	content, hashtags := parseReply(reply)
	if req.Platform == social.PlatformMicroblog {
		content = fitMicroblog(content, hashtags)
	}

	return &GeneratedPost{
		Content:        content,
		Hashtags:       hashtags,
		Platform:       req.Platform,
		CharacterCount: CharacterCount(content, hashtags),
	}, nil
}

// GenerateVariations issues n independent generation calls concurrently and
// returns every successful result. It fails only when all n calls fail.
func (c *Client) GenerateVariations(req Request, n int) ([]*GeneratedPost, error) {
	if n < 1 {
		n = 1
	}
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	posts := make([]*GeneratedPost, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			posts[idx], errs[idx] = c.GeneratePost(req)
		}(i)
	}
	wg.Wait()

	results := make([]*GeneratedPost, 0, n)
	var lastErr error
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			lastErr = errs[i]
			continue
		}
		results = append(results, posts[i])
	}
	if len(results) == 0 {
		return nil, lastErr
	}
	return results, nil
}

// CharacterCount computes the rendered length of a post: content plus, when
// hashtags are present, the space-joined tags and one separator character.
// Always recomputed from the final fields, never taken from the provider.
func CharacterCount(content string, hashtags []string) int {
	count := len(content)
	if len(hashtags) > 0 {
		count += 1 + len(strings.Join(hashtags, " "))
	}
	return count
}

// fitMicroblog truncates content with a trailing ellipsis so the rendered
// post stays within the microblog budget. Hashtags are never truncated.
func fitMicroblog(content string, hashtags []string) string {
	budget := social.MicroblogMaxLength
	if len(hashtags) > 0 {
		budget -= 1 + len(strings.Join(hashtags, " "))
	}
	if len(content) <= budget {
		return content
	}
	if budget <= len(ellipsis) {
		return ellipsis[:maxInt(budget, 0)]
	}
	return strings.TrimSpace(content[:budget-len(ellipsis)]) + ellipsis
}

func buildSystemPrompt(platform social.Platform) string {
	if platform == social.PlatformMicroblog {
		return `You are a social media copywriter drafting a short post about a course certificate.
Rules:
- Hard limit: 280 characters for the whole post including hashtags
- Keep it terse, energetic and shareable
- Use 1-3 hashtags at most
- Respond in exactly this shape:
Content: <the post text>
Hashtags: <comma separated hashtags, omit the line if none requested>`
	}
	return `You are a social media copywriter drafting a professional network post about a course certificate.
Rules:
- The platform allows 3000 characters; aim for 1300-1600
- Write in a discussion-oriented tone that invites comments
- Use 3-5 hashtags
- Respond in exactly this shape:
Content: <the post text>
Hashtags: <comma separated hashtags, omit the line if none requested>`
}

func buildUserPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Write a post announcing this achievement:\n\n")
	b.WriteString(req.CertificateContent)
	b.WriteString(fmt.Sprintf("\n\nTone: %s", req.Tone))
	if req.IncludeHashtags {
		b.WriteString("\nInclude relevant hashtags.")
	} else {
		b.WriteString("\nDo not include hashtags.")
	}
	if req.CustomMessage != "" {
		b.WriteString("\nAdditional context from the author: " + req.CustomMessage)
	}
	return b.String()
}

// upstreamError maps a non-2xx generation response to a provider error,
// pulling the upstream message out of the error body when present.
func upstreamError(status int, body []byte) error {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := http.StatusText(status)
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	}
	return provider.NewError("generation", status, message)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
