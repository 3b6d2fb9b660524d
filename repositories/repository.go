// Package repositories holds the GORM-backed stores for clients, products and
// orders and the unit of work that groups their writes into one transaction.
package repositories

import (
	"context"
	"errors"

	"github.com/kendall-kelly/storefront-api/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no active record
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a write violates a unique index
var ErrDuplicate = errors.New("duplicate record")

// ClientRepository is the Client Store
type ClientRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Client, error)
	FindWithOrders(ctx context.Context, id uint) (*models.Client, error)
	List(ctx context.Context, page Page) ([]models.Client, int64, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, id uint) error
	EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
}

// ProductRepository is the Catalog Store
type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error)
	List(ctx context.Context, page Page) ([]models.Product, int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, id uint) error
}

// OrderRepository persists order headers and their lines
type OrderRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	List(ctx context.Context, page Page) ([]models.Order, int64, error)
	Create(ctx context.Context, order *models.Order) error
	CreateLines(ctx context.Context, lines []models.OrderLine) error
	SyncLines(ctx context.Context, orderID uint, lines []models.OrderLine) error
	UpdateClient(ctx context.Context, orderID, clientID uint) error
	SoftDelete(ctx context.Context, id uint) error
}

// Store exposes every repository and the unit of work boundary.
// Repositories obtained from the Store passed to fn are bound to the transaction.
type Store interface {
	Clients() ClientRepository
	Products() ProductRepository
	Orders() OrderRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// GormStore implements Store on top of a *gorm.DB
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store bound to db
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB returns the underlying handle
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) Clients() ClientRepository {
	return &gormClientRepository{db: s.db}
}

func (s *GormStore) Products() ProductRepository {
	return &gormProductRepository{db: s.db}
}

func (s *GormStore) Orders() OrderRepository {
	return &gormOrderRepository{db: s.db}
}

// Transaction runs fn inside a database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise, including on panic.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// translate maps gorm's not-found error onto ErrNotFound
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
