package mailbox

import (
	"encoding/base64"
	"regexp"
	"strings"

	"google.golang.org/api/gmail/v1"
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// DecodeBody extracts a plain-text representation from a message payload.
// Plain-text parts are preferred over HTML; HTML is used only as a fallback
// with its tags stripped. An empty result is valid input for the extractor,
// not an error.
func DecodeBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	// Single-part message with inline data.
	if payload.Body != nil && payload.Body.Data != "" {
		return decodeBase64URL(payload.Body.Data)
	}

	// First pass: look for a plain-text part.
	for _, part := range payload.Parts {
		if strings.EqualFold(part.MimeType, "text/plain") && part.Body != nil && part.Body.Data != "" {
			return decodeBase64URL(part.Body.Data)
		}
	}

	// Second pass: fall back to the first HTML part, stripped of markup.
	for _, part := range payload.Parts {
		if strings.EqualFold(part.MimeType, "text/html") && part.Body != nil && part.Body.Data != "" {
			return StripHTML(decodeBase64URL(part.Body.Data))
		}
	}

	return ""
}

// decodeBase64URL decodes base64url content as the mail provider delivers it
// (URL alphabet, usually unpadded). Undecodable data yields an empty string.
func decodeBase64URL(data string) string {
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	return ""
}

// StripHTML replaces markup with spaces and collapses runs of whitespace.
func StripHTML(html string) string {
	text := htmlTagPattern.ReplaceAllString(html, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
