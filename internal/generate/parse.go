package generate

import (
	"regexp"
	"strings"
)

var trailingHashtagPattern = regexp.MustCompile(`#[A-Za-z0-9_]+\s*$`)

// parseReply turns the freeform model reply into post content and a hashtag
// list. Preferred shape is a "Content:" line plus an optional "Hashtags:"
// line; degraded replies fall back to the first plain line and finally to
// the raw reply with trailing #tags salvaged off the end.
func parseReply(reply string) (string, []string) {
	var content string
	var hashtags []string

	for _, line := range strings.Split(reply, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, "content:"):
			content = strings.TrimSpace(trimmed[len("content:"):])
		case strings.HasPrefix(lower, "hashtags:"):
			hashtags = parseHashtagList(trimmed[len("hashtags:"):])
		}
	}

	if content == "" {
		// First non-empty line without a colon.
		for _, line := range strings.Split(reply, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" && !strings.Contains(trimmed, ":") {
				content = trimmed
				break
			}
		}
	}

	if content == "" {
		// Last resort: the whole reply is the content; salvage trailing
		// #word tokens as hashtags and strip them from the tail.
		content = strings.TrimSpace(reply)
		for {
			match := trailingHashtagPattern.FindString(content)
			if match == "" {
				break
			}
			tag := strings.TrimSpace(match)
			hashtags = append([]string{tag}, hashtags...)
			content = strings.TrimSpace(strings.TrimSuffix(content, match))
		}
	}

	return content, hashtags
}

// parseHashtagList splits a comma-separated tag list, trimming each entry
// and prefixing "#" where absent.
func parseHashtagList(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		tags = append(tags, tag)
	}
	return tags
}
