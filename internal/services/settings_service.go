package services

import (
	"errors"

	"github.com/certcast/core/internal/database/models"
	"gorm.io/gorm"
)

var (
	// ErrInvalidSettings indicates a settings update failed validation.
	ErrInvalidSettings = errors.New("invalid settings")
)

// SettingsService reads and updates the singleton settings row.
type SettingsService struct {
	db *gorm.DB
}

// NewSettingsService creates a new SettingsService instance
func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get returns the settings, creating the singleton row if missing.
func (s *SettingsService) Get() (*models.Settings, error) {
	var settings models.Settings
	err := s.db.First(&settings, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.Settings{ID: 1}
		if err := s.db.Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update validates and persists new settings.
func (s *SettingsService) Update(settings *models.Settings) error {
	if settings.ScanIntervalMinutes < 5 {
		settings.ScanIntervalMinutes = 5
	}
	switch settings.DefaultTone {
	case "", "professional", "casual", "excited":
	default:
		return ErrInvalidSettings
	}
	settings.ID = 1
	return s.db.Save(settings).Error
}
