// Package extract derives structured certificate records from decoded email
// messages using ordered pattern heuristics. Pure string matching, no ML;
// false positives and negatives are acceptable noise.
package extract

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/certcast/core/internal/mailbox"
)

// Certificate is the structured record derived from one qualifying email.
// EmailID is the identity key: rescanning the same message re-derives and
// overwrites, it never duplicates.
type Certificate struct {
	Title       string   `json:"title"`
	Issuer      string   `json:"issuer"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	EmailID     string   `json:"email_id"`
}

// FallbackTitle is used when the title heuristics yield an empty string.
const FallbackTitle = "Certificate"

const (
	maxBodyForDescription = 500
	maxDescriptionLength  = 200
	maxSnippetLength      = 150
	minSentenceLength     = 10
)

// subjectPrefixPattern strips reply/forward markers and congratulatory
// exclamations from the front of the subject line.
var subjectPrefixPattern = regexp.MustCompile(`(?i)^(?:(?:re|fwd?)\s*:\s*|congratulations?\s*!?\s*|congrats\s*!?\s*)+`)

// noisePhrases are removed anywhere in the subject before title matching.
var noisePhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)certificate of completion`),
	regexp.MustCompile(`(?i)you have completed`),
	regexp.MustCompile(`(?i)course completion`),
	regexp.MustCompile(`(?i)training completed`),
}

// titleRule is one tagged extraction pattern. Rules are tried in order and
// the first capturing match wins, so the set stays independently testable
// and extensible without touching call sites.
type titleRule struct {
	tag     string
	pattern *regexp.Regexp
}

var titleRules = []titleRule{
	{"completed-x", regexp.MustCompile(`(?i)completed\s+(?:the\s+)?(.+?)(?:\s+(?:course|training|certification))?\s*$`)},
	{"certificate-of-x", regexp.MustCompile(`(?i)certificate\s+(?:of\s+)?(.+?)(?:\s+(?:course|training))?\s*$`)},
	{"x-certificate", regexp.MustCompile(`(?i)^(.+?)\s+certificate\b`)},
	{"x-completion", regexp.MustCompile(`(?i)^(.+?)\s+completion\b`)},
}

// sentenceKeywords select description sentences from the body.
var sentenceKeywords = []string{"complet", "certif", "achiev", "skill", "course"}

// dateFormats is the parse ladder for raw header dates.
var dateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC822,
}

// ToCertificate derives a certificate record from one email message.
func ToCertificate(msg mailbox.EmailMessage) Certificate {
	return Certificate{
		Title:       ExtractTitle(msg.Subject),
		Issuer:      ExtractIssuer(msg.From),
		Date:        FormatDate(msg.Date),
		Description: ExtractDescription(msg.Body, msg.Snippet),
		Skills:      ExtractSkills(msg.Body + " " + msg.Subject),
		EmailID:     msg.ID,
	}
}

// ExtractTitle cleans the subject line and applies the ordered title rules,
// falling back to the cleaned subject, then to FallbackTitle.
func ExtractTitle(subject string) string {
	cleaned := subjectPrefixPattern.ReplaceAllString(subject, "")
	for _, phrase := range noisePhrases {
		cleaned = phrase.ReplaceAllString(cleaned, " ")
	}
	cleaned = strings.TrimSpace(regexp.MustCompile(`\s+`).ReplaceAllString(cleaned, " "))
	cleaned = strings.Trim(cleaned, " -:!")

	for _, rule := range titleRules {
		if m := rule.pattern.FindStringSubmatch(cleaned); m != nil {
			if title := strings.TrimSpace(m[1]); title != "" {
				return title
			}
		}
	}
	if cleaned != "" {
		return cleaned
	}
	return FallbackTitle
}

// ExtractIssuer prefers the display name preceding the address in the From
// header; anything containing "@" is rejected. Otherwise the first label of
// the sender's domain is capitalized and used.
func ExtractIssuer(from string) string {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		// Malformed header: best effort on the raw string.
		if name := strings.TrimSpace(from); name != "" && !strings.Contains(name, "@") {
			return name
		}
		return ""
	}

	name := strings.TrimSpace(addr.Name)
	if name != "" && !strings.Contains(name, "@") {
		return name
	}

	at := strings.LastIndex(addr.Address, "@")
	if at < 0 || at == len(addr.Address)-1 {
		return ""
	}
	domain := addr.Address[at+1:]
	label := strings.SplitN(domain, ".", 2)[0]
	return titleCaseWords(label)
}

// FormatDate reformats the raw header date into a readable date string.
// On parse failure the raw string passes through unchanged.
func FormatDate(raw string) string {
	value := strings.TrimSpace(raw)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return raw
}

// ExtractDescription picks certificate-relevant sentences out of the body,
// falling back to the provider snippet when the body is unusable.
func ExtractDescription(body, snippet string) string {
	if body == "" || len(body) > maxBodyForDescription {
		return truncate(snippet, maxSnippetLength)
	}

	sentences := splitSentences(body)
	var matched []string
	for _, sentence := range sentences {
		if len(matched) >= 2 {
			break
		}
		trimmed := strings.TrimSpace(sentence)
		if len(trimmed) <= minSentenceLength {
			continue
		}
		lower := strings.ToLower(trimmed)
		for _, keyword := range sentenceKeywords {
			if strings.Contains(lower, keyword) {
				matched = append(matched, trimmed)
				break
			}
		}
	}

	if len(matched) == 0 {
		return truncate(snippet, maxSnippetLength)
	}
	return truncate(strings.Join(matched, ". "), maxDescriptionLength)
}

// splitSentences splits text on sentence delimiters.
func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
}

// truncate shortens s to max characters with a trailing ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
