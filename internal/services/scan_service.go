package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/certcast/core/internal/database/models"
	"github.com/certcast/core/internal/extract"
	"github.com/certcast/core/internal/mailbox"
	"github.com/certcast/core/internal/oauth"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrMailNotConnected indicates no mail provider token is held; the
	// user must authorize before scanning.
	ErrMailNotConnected = errors.New("mail provider not connected")
)

// mailFetcher is the slice of the mailbox fetcher the scan needs; tests
// substitute a double pointing at a mock provider.
type mailFetcher interface {
	SearchCertificateEmails(ctx context.Context) ([]mailbox.EmailMessage, error)
}

// fetcherFactory builds a fetcher for one scan with the current token.
type fetcherFactory func(ctx context.Context, accessToken string) (mailFetcher, error)

// ScanResult summarizes one mailbox scan.
type ScanResult struct {
	Found   int `json:"found"`
	New     int `json:"new"`
	Updated int `json:"updated"`
}

// ScanService runs the scan pipeline: fetch, decode, extract, upsert.
type ScanService struct {
	db         *gorm.DB
	googleMgr  *oauth.GoogleManager
	logService *LogService
	newFetcher fetcherFactory
}

// NewScanService creates a new ScanService instance
func NewScanService(db *gorm.DB, googleMgr *oauth.GoogleManager, logService *LogService) *ScanService {
	return &ScanService{
		db:         db,
		googleMgr:  googleMgr,
		logService: logService,
		newFetcher: func(ctx context.Context, accessToken string) (mailFetcher, error) {
			return mailbox.NewFetcher(ctx, accessToken)
		},
	}
}

// SetFetcherFactory overrides fetcher construction. Used by tests.
func (s *ScanService) SetFetcherFactory(factory func(ctx context.Context, accessToken string) (mailFetcher, error)) {
	s.newFetcher = factory
}

// Scan performs one single-shot mailbox scan. On a rejected token the mail
// connection is logged out (reset to unauthenticated) and the auth error is
// returned; the caller's re-auth path takes it from there.
func (s *ScanService) Scan(ctx context.Context) (*ScanResult, error) {
	token := s.googleMgr.AccessToken()
	if token == "" {
		return nil, ErrMailNotConnected
	}

	fetcher, err := s.newFetcher(ctx, token)
	if err != nil {
		return nil, err
	}

	messages, err := fetcher.SearchCertificateEmails(ctx)
	if err != nil {
		if errors.Is(err, mailbox.ErrAuthExpired) {
			log.Printf("[Scan] Mail token rejected, logging out mail connection")
			s.googleMgr.MarkExpired()
			s.logService.LogWarn(models.LogModuleScan, "auth_expired", "Mail provider rejected the access token", nil)
			return nil, err
		}
		s.logService.LogError(models.LogModuleScan, "search_failed", err.Error(), nil)
		return nil, err
	}

	result := &ScanResult{Found: len(messages)}
	for _, msg := range messages {
		cert := extract.ToCertificate(msg)
		created, err := s.upsert(cert)
		if err != nil {
			log.Printf("[Scan] Failed to store certificate for email %s: %v", cert.EmailID, err)
			continue
		}
		if created {
			result.New++
		} else {
			result.Updated++
		}
	}

	s.logService.LogInfo(models.LogModuleScan, "scan_complete", "Mailbox scan finished", result)
	return result, nil
}

// upsert stores a certificate keyed by its email id: an existing row is
// re-derived in place, never duplicated. Reports whether a row was created.
func (s *ScanService) upsert(cert extract.Certificate) (bool, error) {
	var existing models.Certificate
	err := s.db.Where("email_id = ?", cert.EmailID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := models.Certificate{
			ID:      uuid.NewString(),
			EmailID: cert.EmailID,
		}
		applyCertificate(&row, cert)
		return true, s.db.Create(&row).Error
	}
	if err != nil {
		return false, err
	}

	applyCertificate(&existing, cert)
	existing.UpdatedAt = time.Now()
	return false, s.db.Save(&existing).Error
}

func applyCertificate(row *models.Certificate, cert extract.Certificate) {
	row.Title = cert.Title
	row.Issuer = cert.Issuer
	row.Date = cert.Date
	row.Description = cert.Description
	row.SetSkills(cert.Skills)
}

// ListCertificates returns stored certificates, newest first.
func (s *ScanService) ListCertificates() ([]models.Certificate, error) {
	var certs []models.Certificate
	err := s.db.Order("created_at DESC").Find(&certs).Error
	return certs, err
}

// DeleteCertificate removes one stored certificate.
func (s *ScanService) DeleteCertificate(id string) error {
	result := s.db.Where("id = ?", id).Delete(&models.Certificate{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
