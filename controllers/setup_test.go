package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/config"
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

type testEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	images   *services.MockImageService
	notifier *services.MockNotifier
	cfg      *config.Config
}

// setupControllerTest wires an in-memory database, mock photo storage and a
// mock notifier behind a router with every API route
func setupControllerTest(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)
	utils.RegisterValidators()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "Failed to connect to test database")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.AutoMigrate(db), "Failed to migrate test database")
	config.SetDB(db)

	cfg := &config.Config{GoEnv: "test", AppName: "Storefront", AppURL: "http://localhost:8080", AppDebug: false}
	previous := config.GetConfig()
	config.SetConfig(cfg)
	t.Cleanup(func() {
		config.SetConfig(previous)
		sqlDB.Close()
	})

	store := repositories.NewGormStore(db)
	images := services.NewMockImageService()
	images.SetAsMockForTesting()
	notifier := services.NewMockNotifier()
	notifier.SetAsMockForTesting()

	services.InitOrderService(store, zap.NewNop())
	services.InitClientService(store, zap.NewNop())
	services.InitProductService(store, images, zap.NewNop())

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"))

	return &testEnv{db: db, router: router, images: images, notifier: notifier, cfg: cfg}
}

func (e *testEnv) createClient(t *testing.T, email string) *models.Client {
	client := &models.Client{
		Name:         "Client " + email,
		Email:        email,
		Phone:        "11999999999",
		BirthDate:    time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC),
		Address:      "Rua Exemplo, 123",
		Neighborhood: "Centro",
		ZipCode:      "12345-678",
		Status:       models.StatusActive,
	}
	require.NoError(t, e.db.Create(client).Error)
	return client
}

func (e *testEnv) createProduct(t *testing.T, name, price string) *models.Product {
	product := &models.Product{
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Type:   "Pastéis",
		Status: models.StatusActive,
	}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

// doJSON sends body as JSON and decodes the JSON response, if any
func (e *testEnv) doJSON(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Code != http.StatusNoContent && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "Response should be valid JSON")
	}
	return w, response
}

func errorCode(response map[string]interface{}) string {
	errObj, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}
