package db

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate runs GORM auto-migrations for all models.
func AutoMigrate(database *gorm.DB) error {
	if err := database.AutoMigrate(&RelayLog{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
