package mailbox

import (
	"encoding/base64"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"google.golang.org/api/gmail/v1"
)

// Property: any payload encoded with the provider's base64url alphabet
// decodes back to the original text, padded or not.
func TestProperty_Base64URLRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("raw_unpadded_round_trip", prop.ForAll(
		func(text string) bool {
			encoded := base64.RawURLEncoding.EncodeToString([]byte(text))
			return decodeBase64URL(encoded) == text
		},
		gen.AnyString(),
	))

	properties.Property("padded_round_trip", prop.ForAll(
		func(text string) bool {
			encoded := base64.URLEncoding.EncodeToString([]byte(text))
			return decodeBase64URL(encoded) == text
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestDecodeBody(t *testing.T) {
	encode := func(s string) string {
		return base64.RawURLEncoding.EncodeToString([]byte(s))
	}

	t.Run("nil payload", func(t *testing.T) {
		if got := DecodeBody(nil); got != "" {
			t.Errorf("expected empty body, got %q", got)
		}
	})

	t.Run("inline data", func(t *testing.T) {
		payload := &gmail.MessagePart{
			Body: &gmail.MessagePartBody{Data: encode("hello world")},
		}
		if got := DecodeBody(payload); got != "hello world" {
			t.Errorf("expected inline data, got %q", got)
		}
	})

	t.Run("plain preferred over html", func(t *testing.T) {
		payload := &gmail.MessagePart{
			Parts: []*gmail.MessagePart{
				{
					MimeType: "text/html",
					Body:     &gmail.MessagePartBody{Data: encode("<b>html body</b>")},
				},
				{
					MimeType: "text/plain",
					Body:     &gmail.MessagePartBody{Data: encode("plain body")},
				},
			},
		}
		if got := DecodeBody(payload); got != "plain body" {
			t.Errorf("expected plain part, got %q", got)
		}
	})

	t.Run("html fallback stripped", func(t *testing.T) {
		payload := &gmail.MessagePart{
			Parts: []*gmail.MessagePart{
				{
					MimeType: "text/html",
					Body:     &gmail.MessagePartBody{Data: encode("<p>You  have\ncompleted</p> <b>the course</b>")},
				},
			},
		}
		if got := DecodeBody(payload); got != "You have completed the course" {
			t.Errorf("expected stripped html, got %q", got)
		}
	})

	t.Run("no usable parts", func(t *testing.T) {
		payload := &gmail.MessagePart{
			Parts: []*gmail.MessagePart{
				{MimeType: "image/png", Body: &gmail.MessagePartBody{}},
			},
		}
		if got := DecodeBody(payload); got != "" {
			t.Errorf("expected empty body, got %q", got)
		}
	})
}

func TestStripHTML(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<div><p>one</p><p>two</p></div>", "one two"},
		{"no markup here", "no markup here"},
		{"  <br/>  ", ""},
	}
	for _, tc := range cases {
		if got := StripHTML(tc.in); got != tc.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
