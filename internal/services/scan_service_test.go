package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/certcast/core/internal/database"
	"github.com/certcast/core/internal/mailbox"
	"github.com/certcast/core/internal/oauth"
	"gorm.io/gorm"
)

// stubFetcher returns scripted messages or a scripted error.
type stubFetcher struct {
	messages []mailbox.EmailMessage
	err      error
}

func (f *stubFetcher) SearchCertificateEmails(ctx context.Context) ([]mailbox.EmailMessage, error) {
	return f.messages, f.err
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "certcast_test_*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	db, err := database.Initialize(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("database.Initialize: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func newTestScanService(t *testing.T, db *gorm.DB, fetcher *stubFetcher) *ScanService {
	t.Helper()
	store := NewConnectionService(db)
	if err := store.Save(oauth.ProviderGoogle, oauth.Credential{AccessToken: "token"}); err != nil {
		t.Fatalf("seed connection: %v", err)
	}

	googleMgr := oauth.NewGoogleManager("id", "secret", "http://localhost/cb", store)
	svc := NewScanService(db, googleMgr, NewLogService(db))
	svc.SetFetcherFactory(func(ctx context.Context, accessToken string) (mailFetcher, error) {
		return fetcher, nil
	})
	return svc
}

func certificateMessages() []mailbox.EmailMessage {
	return []mailbox.EmailMessage{
		{
			ID:      "email-1",
			Subject: "Completed the AWS Solutions Architect course",
			From:    `"Coursera" <no-reply@coursera.org>`,
			Date:    "Tue, 15 Aug 2023 09:30:00 +0000",
			Body:    "You have completed the course covering Python and Docker.",
			Snippet: "You have completed the course",
		},
		{
			ID:      "email-2",
			Subject: "Docker Fundamentals Certificate",
			From:    "certificates@udemy.com",
			Date:    "Mon, 14 Aug 2023 10:00:00 +0000",
			Body:    "Your certificate for Docker Fundamentals is attached.",
			Snippet: "Certificate attached",
		},
	}
}

func TestScanStoresCertificates(t *testing.T) {
	db := newTestDB(t)
	svc := newTestScanService(t, db, &stubFetcher{messages: certificateMessages()})

	result, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Found != 2 || result.New != 2 || result.Updated != 0 {
		t.Errorf("result = %+v, want found=2 new=2 updated=0", result)
	}

	certs, err := svc.ListCertificates()
	if err != nil {
		t.Fatalf("ListCertificates: %v", err)
	}
	if len(certs) != 2 {
		t.Fatalf("expected 2 certificates, got %d", len(certs))
	}

	var aws *string
	for i := range certs {
		if certs[i].EmailID == "email-1" {
			aws = &certs[i].Title
		}
	}
	if aws == nil || *aws != "AWS Solutions Architect" {
		t.Errorf("extracted title wrong: %v", aws)
	}
}

func TestScanIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestScanService(t, db, &stubFetcher{messages: certificateMessages()})

	if _, err := svc.Scan(context.Background()); err != nil {
		t.Fatalf("first Scan: %v", err)
	}
	result, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatalf("second Scan: %v", err)
	}

	// Re-scanning the same emails re-derives in place, never duplicates.
	if result.New != 0 || result.Updated != 2 {
		t.Errorf("result = %+v, want new=0 updated=2", result)
	}
	certs, _ := svc.ListCertificates()
	if len(certs) != 2 {
		t.Errorf("expected 2 certificates after re-scan, got %d", len(certs))
	}
}

func TestScanNotConnected(t *testing.T) {
	db := newTestDB(t)
	googleMgr := oauth.NewGoogleManager("id", "secret", "http://localhost/cb", NewConnectionService(db))
	svc := NewScanService(db, googleMgr, NewLogService(db))

	_, err := svc.Scan(context.Background())
	if !errors.Is(err, ErrMailNotConnected) {
		t.Fatalf("expected ErrMailNotConnected, got %v", err)
	}
}

func TestScanAuthExpiredLogsOut(t *testing.T) {
	db := newTestDB(t)
	svc := newTestScanService(t, db, &stubFetcher{err: mailbox.ErrAuthExpired})

	_, err := svc.Scan(context.Background())
	if !errors.Is(err, mailbox.ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}

	// The mail connection is reset; the next scan requires re-auth.
	if _, err := svc.Scan(context.Background()); !errors.Is(err, ErrMailNotConnected) {
		t.Fatalf("expected ErrMailNotConnected after expiry, got %v", err)
	}
}

func TestDeleteCertificate(t *testing.T) {
	db := newTestDB(t)
	svc := newTestScanService(t, db, &stubFetcher{messages: certificateMessages()})

	if _, err := svc.Scan(context.Background()); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	certs, _ := svc.ListCertificates()
	if err := svc.DeleteCertificate(certs[0].ID); err != nil {
		t.Fatalf("DeleteCertificate: %v", err)
	}

	remaining, _ := svc.ListCertificates()
	if len(remaining) != 1 {
		t.Errorf("expected 1 certificate after delete, got %d", len(remaining))
	}

	if err := svc.DeleteCertificate("missing-id"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}
