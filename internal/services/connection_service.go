package services

import (
	"errors"

	"github.com/certcast/core/internal/database/models"
	"github.com/certcast/core/internal/oauth"
	"gorm.io/gorm"
)

// ConnectionService persists provider credentials and connection states. It
// implements oauth.Store so the token managers can be handed one injected
// capability instead of reaching into the database themselves.
type ConnectionService struct {
	db *gorm.DB
}

// NewConnectionService creates a new ConnectionService instance
func NewConnectionService(db *gorm.DB) *ConnectionService {
	return &ConnectionService{db: db}
}

// Save upserts the credential for a provider and marks it authenticated.
func (s *ConnectionService) Save(provider string, cred oauth.Credential) error {
	var conn models.Connection
	err := s.db.Where("provider = ?", provider).First(&conn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		conn = models.Connection{Provider: provider}
	} else if err != nil {
		return err
	}

	conn.AccessToken = cred.AccessToken
	conn.RefreshToken = cred.RefreshToken
	conn.ExpiresIn = cred.ExpiresIn
	conn.Status = string(oauth.StateAuthenticated)
	return s.db.Save(&conn).Error
}

// Load returns the stored credential for a provider, or nil when absent.
func (s *ConnectionService) Load(provider string) (*oauth.Credential, error) {
	var conn models.Connection
	err := s.db.Where("provider = ?", provider).First(&conn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if conn.Status != string(oauth.StateAuthenticated) {
		return nil, nil
	}
	return &oauth.Credential{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		ExpiresIn:    conn.ExpiresIn,
	}, nil
}

// Clear wipes the credential and resets the connection to unauthenticated.
func (s *ConnectionService) Clear(provider string) error {
	return s.db.Model(&models.Connection{}).
		Where("provider = ?", provider).
		Updates(map[string]interface{}{
			"access_token":  "",
			"refresh_token": "",
			"expires_in":    0,
			"status":        string(oauth.StateUnauthenticated),
		}).Error
}

// Status returns the persisted connection status per provider.
func (s *ConnectionService) Status() (map[string]string, error) {
	var conns []models.Connection
	if err := s.db.Find(&conns).Error; err != nil {
		return nil, err
	}

	status := map[string]string{
		oauth.ProviderGoogle:    string(oauth.StateUnauthenticated),
		oauth.ProviderMicroblog: string(oauth.StateUnauthenticated),
		oauth.ProviderNetwork:   string(oauth.StateUnauthenticated),
	}
	for _, conn := range conns {
		status[conn.Provider] = conn.Status
	}
	return status, nil
}
