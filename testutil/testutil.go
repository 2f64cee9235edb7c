package testutil

import (
	"os"
	"testing"

	"github.com/ecotrade/ecotrade-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// NewTestDB opens a migrated in-memory SQLite database private to t.
// A single connection keeps every query on the same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// CreateUser inserts a user holding points EcoPoints
func CreateUser(t *testing.T, db *gorm.DB, username string, points int) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
		Name:         username,
		EcoPoints:    points,
		Role:         models.RoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateProduct inserts a product with the given stock
func CreateProduct(t *testing.T, db *gorm.DB, name string, price string, stock int, isPlant bool) *models.Product {
	t.Helper()

	category := models.CategoryTools
	if isPlant {
		category = models.CategoryPlants
	}
	product := &models.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		Category:    category,
		IsPlant:     isPlant,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// Reload fetches the current row for dest's primary key
func Reload(t *testing.T, db *gorm.DB, dest interface{}) {
	t.Helper()
	require.NoError(t, db.Unscoped().First(dest).Error)
}
