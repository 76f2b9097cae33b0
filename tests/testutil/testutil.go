package testutil

import (
	"os"
	"testing"

	"github.com/kendall-kelly/prepress-orders-api/config"
	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
// It will fail the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// MustSetTestEnvironment points configuration at test values and fails if GO_ENV cannot be set.
// Use this in suite setup functions before config.Load.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("AUTH0_DOMAIN", "test.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.test.com")
	t.Setenv("AWS_S3_BUCKET", "")

	RequireTestEnvironment(t)
}

// LoadTestConfig loads configuration from the test environment and installs it for handlers
func LoadTestConfig(t *testing.T) *config.Config {
	t.Helper()

	MustSetTestEnvironment(t)
	cfg, err := config.Load()
	require.NoError(t, err)
	require.True(t, cfg.IsTest())

	config.SetConfig(cfg)
	return cfg
}

// NewTestDB opens a migrated in-memory database and installs it as the shared connection.
// The connection is closed and unset when the test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err, "Failed to connect to test database")

	// a second pooled connection would see a different in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.MigrateDatabase(db), "Failed to migrate test database")

	config.SetDB(db)
	t.Cleanup(func() {
		sqlDB.Close()
		config.SetDB(nil)
	})
	return db
}

// SeedUser inserts a profile whose Auth0 subject is "auth0|<name>"
func SeedUser(t *testing.T, db *gorm.DB, name string, role models.Role) models.User {
	t.Helper()

	user := models.User{
		Auth0ID: "auth0|" + name,
		Name:    name,
		Email:   name + "@example.com",
		Role:    role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}
