package mailbox

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func newTestFetcher(t *testing.T, handler http.Handler) (*Fetcher, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	fetcher, err := NewFetcher(context.Background(), "test-token",
		option.WithEndpoint(server.URL),
		option.WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	return fetcher, server
}

func encodeBody(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestSearchCertificateEmails(t *testing.T) {
	messages := map[string]*gmail.Message{
		"msg-1": {
			Id:      "msg-1",
			Snippet: "You have completed the course",
			Payload: &gmail.MessagePart{
				Headers: []*gmail.MessagePartHeader{
					{Name: "Subject", Value: "Completed the AWS Solutions Architect course"},
					{Name: "From", Value: `"Coursera" <no-reply@coursera.org>`},
					{Name: "Date", Value: "Tue, 15 Aug 2023 09:30:00 +0000"},
				},
				Parts: []*gmail.MessagePart{
					{
						MimeType: "text/plain",
						Body:     &gmail.MessagePartBody{Data: encodeBody("You have completed the course covering Python and Docker.")},
					},
				},
			},
		},
		"msg-2": {
			Id:      "msg-2",
			Snippet: "Certificate attached",
			Payload: &gmail.MessagePart{
				Headers: []*gmail.MessagePartHeader{
					{Name: "Subject", Value: "Docker Fundamentals Certificate"},
					{Name: "From", Value: "certificates@udemy.com"},
					{Name: "Date", Value: "Mon, 14 Aug 2023 10:00:00 +0000"},
				},
				Parts: []*gmail.MessagePart{
					{
						MimeType: "text/html",
						Body:     &gmail.MessagePartBody{Data: encodeBody("<p>Your certificate is attached</p>")},
					},
				},
			},
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/users/me/messages"):
			if q := r.URL.Query().Get("q"); !strings.Contains(q, "certificate") {
				t.Errorf("unexpected search query: %q", q)
			}
			json.NewEncoder(w).Encode(&gmail.ListMessagesResponse{
				Messages: []*gmail.Message{{Id: "msg-1"}, {Id: "msg-2"}},
			})
		case strings.Contains(r.URL.Path, "/users/me/messages/"):
			parts := strings.Split(r.URL.Path, "/")
			id := parts[len(parts)-1]
			msg, ok := messages[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(msg)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	fetcher, _ := newTestFetcher(t, handler)

	result, err := fetcher.SearchCertificateEmails(context.Background())
	if err != nil {
		t.Fatalf("SearchCertificateEmails: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(result))
	}

	// Summary order is preserved.
	if result[0].ID != "msg-1" || result[1].ID != "msg-2" {
		t.Errorf("order not preserved: %s, %s", result[0].ID, result[1].ID)
	}
	if result[0].Subject != "Completed the AWS Solutions Architect course" {
		t.Errorf("unexpected subject: %q", result[0].Subject)
	}
	if !strings.Contains(result[0].Body, "Python and Docker") {
		t.Errorf("plain body not decoded: %q", result[0].Body)
	}
	// HTML-only message falls back to stripped markup.
	if result[1].Body != "Your certificate is attached" {
		t.Errorf("html body not stripped: %q", result[1].Body)
	}
}

func TestSearchCertificateEmailsEmpty(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&gmail.ListMessagesResponse{})
	})
	fetcher, _ := newTestFetcher(t, handler)

	result, err := fetcher.SearchCertificateEmails(context.Background())
	if err != nil {
		t.Fatalf("expected empty success, got %v", err)
	}
	if len(result) != 0 {
		t.Errorf("expected no messages, got %d", len(result))
	}
}

func TestSearchCertificateEmailsAuthExpired(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"code": 401, "message": "Invalid Credentials"}}`))
	})
	fetcher, _ := newTestFetcher(t, handler)

	_, err := fetcher.SearchCertificateEmails(context.Background())
	if !errors.Is(err, ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
}

func TestSearchCertificateEmailsDroppedDetails(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/users/me/messages"):
			json.NewEncoder(w).Encode(&gmail.ListMessagesResponse{
				Messages: []*gmail.Message{{Id: "good"}, {Id: "bad"}},
			})
		case strings.HasSuffix(r.URL.Path, "/good"):
			json.NewEncoder(w).Encode(&gmail.Message{Id: "good", Snippet: "ok"})
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": {"code": 500, "message": "boom"}}`))
		}
	})
	fetcher, _ := newTestFetcher(t, handler)

	result, err := fetcher.SearchCertificateEmails(context.Background())
	if err != nil {
		t.Fatalf("detail failures must not fail the scan: %v", err)
	}
	if len(result) != 1 || result[0].ID != "good" {
		t.Fatalf("expected only the good message, got %v", result)
	}
}
