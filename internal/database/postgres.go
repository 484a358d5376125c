package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/gema-play-api/internal/models"
)

// ConnectPostgres establishes a connection to the concept catalogue database
// and migrates its schema.
func ConnectPostgres(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn must not be empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the catalogue tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Concept{}); err != nil {
		return fmt.Errorf("failed to migrate concept catalogue: %w", err)
	}
	return nil
}
