package database

import (
	"fmt"
	"log"

	"creator-market/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	// Migrate account models first
	accountModels := []interface{}{
		&models.User{},
		&models.TikTokAccount{},
	}

	for _, model := range accountModels {
		if err := DB.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	// Migrate campaign models
	campaignModels := []interface{}{
		&models.Campaign{},
		&models.RewardTier{},
		&models.Submission{},
		&models.VideoStats{},
		&models.VideoStatsHistory{},
	}

	for _, model := range campaignModels {
		if err := DB.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	// Migrate settlement models
	settlementModels := []interface{}{
		&models.Invoice{},
		&models.ReferralCommission{},
		&models.ReferralInvoice{},
		&models.Notification{},
	}

	for _, model := range settlementModels {
		if err := DB.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
