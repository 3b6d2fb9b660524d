package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/config"
	"github.com/kendall-kelly/storefront-api/controllers"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/repositories"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/kendall-kelly/storefront-api/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
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

// RequireTestEnvironmentOrSkip is similar to RequireTestEnvironment but skips the test
// instead of failing it. Use this for optional tests that should only run in test environment.
func RequireTestEnvironmentOrSkip(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Skipf("Skipping test: GO_ENV must be 'test' (current: %q)", env)
	}
}

// PrintEnvironmentInfo prints the current test environment configuration.
// Useful for debugging test environment issues.
func PrintEnvironmentInfo() {
	fmt.Printf("Test Environment Info:\n")
	fmt.Printf("  GO_ENV: %s\n", os.Getenv("GO_ENV"))
	fmt.Printf("  DATABASE_URL: %s\n", MaskDatabaseURL(os.Getenv("DATABASE_URL")))
	fmt.Printf("  STORAGE_DRIVER: %s\n", os.Getenv("STORAGE_DRIVER"))
	fmt.Printf("  MAIL_DRIVER: %s\n", os.Getenv("MAIL_DRIVER"))
}

// MaskDatabaseURL hides credentials in a database URL for safe printing
func MaskDatabaseURL(url string) string {
	if url == "" {
		return "(not set)"
	}
	scheme, rest, found := strings.Cut(url, "://")
	if !found {
		return url
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "****" + rest[at:]
	}
	masked := scheme + "://" + rest
	if !strings.Contains(url, "test") {
		masked += " [WARNING: may not be test DB]"
	}
	return masked
}

// SetupTestDB opens a migrated in-memory sqlite database and installs it as
// the global handle
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "Failed to connect to test database")

	// Every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db), "Failed to migrate test database")
	config.SetDB(db)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// TestConfig returns the configuration used by the integration and acceptance suites
func TestConfig(uploadDir string) *config.Config {
	return &config.Config{
		GoEnv:              "test",
		AppName:            "Storefront",
		AppURL:             "http://localhost:8080",
		LogLevel:           "debug",
		CORSAllowedOrigins: []string{"*"},
		StorageDriver:      "local",
		UploadDir:          uploadDir,
		MailDriver:         "log",
		MailFrom:           "orders@storefront.test",
		MailQueueSize:      10,
		MailTimeout:        time.Second,
	}
}

// NewRouter wires every service over db and returns a router serving the API.
// images and notifier replace the globals for the duration of the test.
func NewRouter(db *gorm.DB, cfg *config.Config, images services.ImageService, notifier services.Notifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	utils.RegisterValidators()
	config.SetConfig(cfg)

	logger := zap.NewNop()
	store := repositories.NewGormStore(db)
	services.SetImageService(images)
	services.SetNotifier(notifier)
	services.InitOrderService(store, logger)
	services.InitClientService(store, logger)
	services.InitProductService(store, images, logger)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(logger))
	controllers.RegisterRoutes(router.Group("/api/v1"))
	return router
}

// CreateClient inserts an active client directly
func CreateClient(t *testing.T, db *gorm.DB, name, email string) *models.Client {
	t.Helper()

	client := &models.Client{
		Name:         name,
		Email:        email,
		Phone:        "11999999999",
		BirthDate:    time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC),
		Address:      "Rua Exemplo, 123",
		Neighborhood: "Centro",
		ZipCode:      "12345-678",
		Status:       models.StatusActive,
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

// CreateProduct inserts an active product directly
func CreateProduct(t *testing.T, db *gorm.DB, name, price string) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Type:   "Pastéis",
		Status: models.StatusActive,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}
