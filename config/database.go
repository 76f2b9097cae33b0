package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kendall-kelly/prepress-orders-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// OpenDialector picks the driver from the URL: sqlite for "sqlite:" or "file:" URLs, PostgreSQL otherwise
func OpenDialector(databaseURL string) gorm.Dialector {
	switch {
	case strings.HasPrefix(databaseURL, "sqlite:"):
		return sqlite.Open(strings.TrimPrefix(databaseURL, "sqlite:"))
	case strings.HasPrefix(databaseURL, "file:"):
		return sqlite.Open(databaseURL)
	}
	return postgres.Open(databaseURL)
}

// ConnectDatabase establishes the database connection described by cfg
func ConnectDatabase(cfg *Config) error {
	if cfg == nil || cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	gormConfig := &gorm.Config{}
	if cfg.IsProduction() || cfg.IsTest() {
		gormConfig.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(OpenDialector(cfg.DatabaseURL), gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// sqlite allows a single writer, and an in-memory database lives only as long as its connection
	if db.Dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to configure database pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	DB = db
	return nil
}

// MigrateDatabase creates or updates every table the service uses
func MigrateDatabase(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.Claim{},
		&models.HistoryEntry{},
		&models.Task{},
		&models.Attachment{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// PingDatabase checks that the connection is alive
func PingDatabase(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB replaces the database instance (tests)
func SetDB(db *gorm.DB) {
	DB = db
}
