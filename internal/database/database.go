package database

import (
	"fmt"
	"log/slog"

	"events-admin/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	db, err := Open(postgres.Open(dsn))
	if err != nil {
		return err
	}

	DB = db
	slog.Info("Database connection established successfully")
	return nil
}

// Open opens a gorm connection on any dialector with the service settings
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// AutoMigrate runs automatic migrations for the dashboard models
func AutoMigrate(db *gorm.DB) error {
	dashboardModels := []interface{}{
		&models.Event{},
		&models.AdminLog{},
	}

	for _, model := range dashboardModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	slog.Info("Database migrations completed successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
