package config

import (
	"fmt"

	"github.com/ecotrade/ecotrade-api/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const defaultSQLitePath = "ecotrade.db"

var DB *gorm.DB

// ConnectDatabase opens the database selected by DATABASE_DRIVER
func ConnectDatabase(cfg *Config) error {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "sqlite":
		path := cfg.DatabaseURL
		if path == "" {
			path = defaultSQLitePath
			zap.L().Info("DATABASE_URL not set, using local sqlite file", zap.String("path", path))
		}
		dialector = sqlite.Open(path)
	default:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("failed to connect to database: DATABASE_URL is empty")
		}
		dialector = postgres.Open(cfg.DatabaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	DB = db

	zap.L().Info("Database connection established", zap.String("driver", cfg.DatabaseDriver))
	return nil
}

// Migrate creates or updates every table the API owns
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
