package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "Failed to connect to test database")

	// Every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db), "Failed to migrate test database")
	return db
}

func createTestClient(t *testing.T, db *gorm.DB, email string) *models.Client {
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
	require.NoError(t, db.Create(client).Error)
	return client
}

func createTestProduct(t *testing.T, db *gorm.DB, name, price string) *models.Product {
	product := &models.Product{
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Type:   "Pastéis",
		Status: models.StatusActive,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func setProductPrice(t *testing.T, db *gorm.DB, product *models.Product, price string) {
	require.NoError(t, db.Model(product).Update("price", decimal.RequireFromString(price)).Error)
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}

// faultyStore wraps a Store and injects failures into the repositories handed
// out inside a transaction
type faultyStore struct {
	repositories.Store
	inTx            bool
	failLines       error
	vanishedProduct uint
}

func (s *faultyStore) Transaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repositories.Store) error {
		return fn(&faultyStore{Store: tx, inTx: true, failLines: s.failLines, vanishedProduct: s.vanishedProduct})
	})
}

func (s *faultyStore) Orders() repositories.OrderRepository {
	if !s.inTx || s.failLines == nil {
		return s.Store.Orders()
	}
	return &faultyOrders{OrderRepository: s.Store.Orders(), err: s.failLines}
}

func (s *faultyStore) Products() repositories.ProductRepository {
	if !s.inTx || s.vanishedProduct == 0 {
		return s.Store.Products()
	}
	return &vanishingProducts{ProductRepository: s.Store.Products(), id: s.vanishedProduct}
}

type faultyOrders struct {
	repositories.OrderRepository
	err error
}

func (o *faultyOrders) CreateLines(ctx context.Context, lines []models.OrderLine) error {
	return o.err
}

func (o *faultyOrders) SyncLines(ctx context.Context, orderID uint, lines []models.OrderLine) error {
	return o.err
}

// vanishingProducts behaves as if the product had been deleted after the
// pre-transaction checks
type vanishingProducts struct {
	repositories.ProductRepository
	id uint
}

func (p *vanishingProducts) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	if id == p.id {
		return nil, repositories.ErrNotFound
	}
	return p.ProductRepository.FindByID(ctx, id)
}

// staleEmailStore answers every email lookup with "free", as a concurrent
// writer would see it before the other insert commits
type staleEmailStore struct {
	repositories.Store
}

func (s *staleEmailStore) Clients() repositories.ClientRepository {
	return &staleEmailClients{ClientRepository: s.Store.Clients()}
}

type staleEmailClients struct {
	repositories.ClientRepository
}

func (c *staleEmailClients) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	return false, nil
}

var errInjected = errors.New("injected failure")

func testLogger() *zap.Logger {
	return zap.NewNop()
}
