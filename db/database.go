package db

import (
	"fmt"
	"log"

	"athena_privacy_go/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize opens the engine database and migrates the privacy schema. WAL
// mode keeps concurrent export reads cheap; foreign-key enforcement is
// switched on because sqlite leaves it off by default, and the
// child-before-parent deletion ordering relies on the constraints actually
// being checked.
func Initialize(dbPath string, environment string) error {
	logLevel := logger.Info
	if environment == "production" {
		logLevel = logger.Warn
	}

	dsn := dbPath + "?_journal_mode=WAL&_foreign_keys=1"

	var err error
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := DB.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate privacy schema: %w", err)
	}

	log.Println("Database ready (WAL mode, foreign keys enforced)")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
