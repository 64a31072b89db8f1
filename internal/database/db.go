package database

import (
	"os"
	"path/filepath"

	"github.com/certcast/core/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize creates and returns a database connection
func Initialize(dbPath string) (*gorm.DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(sqlite.Open(dbPath), gormConfig)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// runMigrations runs all database migrations
func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Settings{},
		&models.Connection{},
		&models.Certificate{},
		&models.GeneratedPost{},
		&models.Log{},
	); err != nil {
		return err
	}

	// Settings is a singleton row; create it on first run.
	var count int64
	db.Model(&models.Settings{}).Count(&count)
	if count == 0 {
		if err := db.Create(&models.Settings{ID: 1}).Error; err != nil {
			return err
		}
	}

	return nil
}
