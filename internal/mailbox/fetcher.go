// Package mailbox fetches certificate-like emails from the mail provider's
// search API and decodes their payloads into plain text.
package mailbox

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/certcast/core/internal/provider"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

var (
	// ErrAuthExpired indicates the mail provider rejected the access token.
	// The caller is expected to reset the stored auth state and require a
	// full re-authorization.
	ErrAuthExpired = errors.New("mail access token expired")
)

const (
	// certificateQuery is the fixed disjunctive search query for
	// certificate-like emails.
	certificateQuery = `certificate OR certification OR "course completion" OR "training completed" OR diploma OR achievement OR "you have completed"`

	// maxSearchResults caps the number of message summaries per scan.
	maxSearchResults = 20
	// maxDetailFetches caps how many summaries are expanded into full
	// messages, bounding both API cost and request burst.
	maxDetailFetches = 10

	gmailUser = "me"
)

// Fetcher queries the mail provider for certificate-like emails.
type Fetcher struct {
	svc *gmail.Service
}

// NewFetcher creates a Fetcher authenticated with the given access token.
// Extra client options are accepted so tests can point the service at a mock
// endpoint.
func NewFetcher(ctx context.Context, accessToken string, opts ...option.ClientOption) (*Fetcher, error) {
	options := []option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})),
	}
	options = append(options, opts...)

	svc, err := gmail.NewService(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to create mail service: %w", err)
	}
	return &Fetcher{svc: svc}, nil
}

// SearchCertificateEmails runs the fixed keyword search and expands the first
// batch of summaries into fully decoded messages. The returned slice
// preserves the provider's summary order; individual detail-fetch failures
// are logged and dropped without failing the scan. A zero-result search is a
// success with an empty list.
func (f *Fetcher) SearchCertificateEmails(ctx context.Context) ([]EmailMessage, error) {
	list, err := f.svc.Users.Messages.List(gmailUser).
		Q(certificateQuery).
		MaxResults(maxSearchResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyError(err)
	}

	if len(list.Messages) == 0 {
		return []EmailMessage{}, nil
	}

	summaries := list.Messages
	if len(summaries) > maxDetailFetches {
		summaries = summaries[:maxDetailFetches]
	}

	// Fan out the detail fetches, gather results in original index order.
	results := make([]*EmailMessage, len(summaries))
	var wg sync.WaitGroup
	for i, summary := range summaries {
		wg.Add(1)
		go func(idx int, id string) {
			defer wg.Done()
			full, err := f.svc.Users.Messages.Get(gmailUser, id).Format("full").Context(ctx).Do()
			if err != nil {
				log.Printf("[Mailbox] Unable to fetch message %s: %v", id, err)
				return
			}
			msg := parseMessage(full)
			results[idx] = &msg
		}(i, summary.Id)
	}
	wg.Wait()

	messages := make([]EmailMessage, 0, len(results))
	for _, msg := range results {
		if msg != nil {
			messages = append(messages, *msg)
		}
	}
	return messages, nil
}

// parseMessage flattens a full message payload into an EmailMessage.
func parseMessage(msg *gmail.Message) EmailMessage {
	email := EmailMessage{
		ID:      msg.Id,
		Snippet: msg.Snippet,
	}
	if msg.Payload == nil {
		return email
	}
	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "Subject":
			email.Subject = header.Value
		case "From":
			email.From = header.Value
		case "Date":
			email.Date = header.Value
		}
	}
	email.Body = DecodeBody(msg.Payload)
	return email
}

// classifyError maps a mail API failure onto the pipeline error taxonomy:
// 401 becomes ErrAuthExpired, every other non-2xx response is surfaced as a
// provider error with its upstream status and message.
func classifyError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized {
			return ErrAuthExpired
		}
		return provider.NewError("mail", apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("mail search failed: %w", err)
}
