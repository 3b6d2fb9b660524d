package repositories

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/kendall-kelly/storefront-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "Failed to connect to test database")

	// Every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db), "Failed to migrate test database")
	return db
}

func newClient(email string) *models.Client {
	return &models.Client{
		Name:         "Test Client",
		Email:        email,
		Phone:        "11999999999",
		BirthDate:    time.Date(1985, 12, 25, 0, 0, 0, 0, time.UTC),
		Address:      "Rua Exemplo, 123",
		Neighborhood: "Centro",
		ZipCode:      "12345-678",
	}
}

func newProduct(name, price string) *models.Product {
	return &models.Product{Name: name, Price: decimal.RequireFromString(price), Type: "Pastéis"}
}

func lineFor(orderID uint, p *models.Product, qty int) models.OrderLine {
	return models.OrderLine{OrderID: orderID, ProductID: p.ID, Quantity: qty, PriceAtPurchase: p.Price}
}

func TestClientRepository_FindByIDExcludesDeleted(t *testing.T) {
	store := NewGormStore(setupRepositoryTestDB(t))
	ctx := context.Background()

	client := newClient("c1@x.test")
	require.NoError(t, store.Clients().Create(ctx, client))

	found, err := store.Clients().FindByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "c1@x.test", found.Email)

	require.NoError(t, store.Clients().SoftDelete(ctx, client.ID))

	_, err = store.Clients().FindByID(ctx, client.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Clients().FindByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Clients().SoftDelete(ctx, client.ID), ErrNotFound, "deleting twice reports not found")
}

func TestClientRepository_EmailTaken(t *testing.T) {
	store := NewGormStore(setupRepositoryTestDB(t))
	ctx := context.Background()

	a := newClient("a@x.test")
	b := newClient("b@x.test")
	require.NoError(t, store.Clients().Create(ctx, a))
	require.NoError(t, store.Clients().Create(ctx, b))

	taken, err := store.Clients().EmailTaken(ctx, "A@x.test", 0)
	require.NoError(t, err)
	assert.True(t, taken, "comparison is case-insensitive")

	taken, err = store.Clients().EmailTaken(ctx, "a@x.test", a.ID)
	require.NoError(t, err)
	assert.False(t, taken, "a client's own email does not count")

	taken, err = store.Clients().EmailTaken(ctx, "a@x.test", b.ID)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = store.Clients().EmailTaken(ctx, "new@x.test", 0)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestClientRepository_DuplicateEmail(t *testing.T) {
	store := NewGormStore(setupRepositoryTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Clients().Create(ctx, newClient("a@x.test")))
	assert.ErrorIs(t, store.Clients().Create(ctx, newClient("a@x.test")), ErrDuplicate)

	b := newClient("b@x.test")
	require.NoError(t, store.Clients().Create(ctx, b))
	err := store.Clients().Update(ctx, b, map[string]interface{}{"email": "a@x.test"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestClientRepository_ListPaginates(t *testing.T) {
	store := NewGormStore(setupRepositoryTestDB(t))
	ctx := context.Background()

	for _, email := range []string{"1@x.test", "2@x.test", "3@x.test"} {
		require.NoError(t, store.Clients().Create(ctx, newClient(email)))
	}

	clients, total, err := store.Clients().List(ctx, NewPage(2, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, clients, 1)
	assert.Equal(t, "3@x.test", clients[0].Email)
}

func TestProductRepository_FindByIDs(t *testing.T) {
	store := NewGormStore(setupRepositoryTestDB(t))
	ctx := context.Background()

	p1 := newProduct("P1", "50.00")
	p2 := newProduct("P2", "30.00")
	require.NoError(t, store.Products().Create(ctx, p1))
	require.NoError(t, store.Products().Create(ctx, p2))
	require.NoError(t, store.Products().SoftDelete(ctx, p2.ID))

	found, err := store.Products().FindByIDs(ctx, []uint{p1.ID, p2.ID, 4242})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Contains(t, found, p1.ID)
	assert.True(t, decimal.RequireFromString("50.00").Equal(found[p1.ID].Price))

	empty, err := store.Products().FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOrderRepository_CreateAndLoadAggregate(t *testing.T) {
	store := NewGormStore(setupRepositoryTestDB(t))
	ctx := context.Background()

	client := newClient("c1@x.test")
	require.NoError(t, store.Clients().Create(ctx, client))
	p1 := newProduct("P1", "50.00")
	p2 := newProduct("P2", "30.00")
	require.NoError(t, store.Products().Create(ctx, p1))
	require.NoError(t, store.Products().Create(ctx, p2))

	order := &models.Order{ClientID: client.ID}
	require.NoError(t, store.Orders().Create(ctx, order))
	require.NoError(t, store.Orders().CreateLines(ctx, []models.OrderLine{
		lineFor(order.ID, p1, 2),
		lineFor(order.ID, p2, 1),
	}))

	loaded, err := store.Orders().FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "c1@x.test", loaded.Client.Email)
	require.Len(t, loaded.Lines, 2)
	assert.Equal(t, p1.ID, loaded.Lines[0].ProductID, "lines keep insertion order")
	assert.Equal(t, "P1", loaded.Lines[0].Product.Name)
	assert.Equal(t, "130.00", loaded.Total().StringFixed(2))
}

func TestOrderRepository_SyncLines(t *testing.T) {
	store := NewGormStore(setupRepositoryTestDB(t))
	ctx := context.Background()

	client := newClient("c1@x.test")
	require.NoError(t, store.Clients().Create(ctx, client))
	a := newProduct("A", "10.00")
	b := newProduct("B", "20.00")
	c := newProduct("C", "5.00")
	for _, p := range []*models.Product{a, b, c} {
		require.NoError(t, store.Products().Create(ctx, p))
	}

	order := &models.Order{ClientID: client.ID}
	require.NoError(t, store.Orders().Create(ctx, order))
	require.NoError(t, store.Orders().CreateLines(ctx, []models.OrderLine{
		lineFor(order.ID, a, 2),
		lineFor(order.ID, b, 1),
	}))

	// B changes price before the sync
	newB := *b
	newB.Price = decimal.RequireFromString("25.00")

	require.NoError(t, store.Orders().SyncLines(ctx, order.ID, []models.OrderLine{
		lineFor(order.ID, &newB, 1),
		lineFor(order.ID, c, 3),
	}))

	loaded, err := store.Orders().FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 2)

	byProduct := map[uint]models.OrderLine{}
	for _, l := range loaded.Lines {
		byProduct[l.ProductID] = l
	}
	assert.NotContains(t, byProduct, a.ID)
	assert.Equal(t, 1, byProduct[b.ID].Quantity)
	assert.Equal(t, "25.00", byProduct[b.ID].PriceAtPurchase.StringFixed(2))
	assert.Equal(t, 3, byProduct[c.ID].Quantity)
	assert.Equal(t, "5.00", byProduct[c.ID].PriceAtPurchase.StringFixed(2))

	var lineCount int64
	require.NoError(t, store.DB().Model(&models.OrderLine{}).Where("order_id = ?", order.ID).Count(&lineCount).Error)
	assert.Equal(t, int64(2), lineCount, "removed lines are deleted, not kept")
}

func TestOrderRepository_UpdateClientAndSoftDelete(t *testing.T) {
	store := NewGormStore(setupRepositoryTestDB(t))
	ctx := context.Background()

	first := newClient("first@x.test")
	second := newClient("second@x.test")
	require.NoError(t, store.Clients().Create(ctx, first))
	require.NoError(t, store.Clients().Create(ctx, second))

	order := &models.Order{ClientID: first.ID}
	require.NoError(t, store.Orders().Create(ctx, order))

	require.NoError(t, store.Orders().UpdateClient(ctx, order.ID, second.ID))
	loaded, err := store.Orders().FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, loaded.ClientID)

	require.NoError(t, store.Orders().SoftDelete(ctx, order.ID))
	_, err = store.Orders().FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Orders().UpdateClient(ctx, order.ID, first.ID), ErrNotFound)
}

func TestClientRepository_FindWithOrders(t *testing.T) {
	store := NewGormStore(setupRepositoryTestDB(t))
	ctx := context.Background()

	client := newClient("c1@x.test")
	require.NoError(t, store.Clients().Create(ctx, client))
	p := newProduct("P1", "50.00")
	require.NoError(t, store.Products().Create(ctx, p))

	kept := &models.Order{ClientID: client.ID}
	removed := &models.Order{ClientID: client.ID}
	require.NoError(t, store.Orders().Create(ctx, kept))
	require.NoError(t, store.Orders().Create(ctx, removed))
	require.NoError(t, store.Orders().CreateLines(ctx, []models.OrderLine{lineFor(kept.ID, p, 1)}))
	require.NoError(t, store.Orders().SoftDelete(ctx, removed.ID))

	loaded, err := store.Clients().FindWithOrders(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Orders, 1)
	assert.Equal(t, kept.ID, loaded.Orders[0].ID)
	require.Len(t, loaded.Orders[0].Lines, 1)
	assert.Equal(t, "P1", loaded.Orders[0].Lines[0].Product.Name)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	store := NewGormStore(setupRepositoryTestDB(t))
	ctx := context.Background()

	client := newClient("c1@x.test")
	require.NoError(t, store.Clients().Create(ctx, client))

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx Store) error {
		if err := tx.Orders().Create(ctx, &models.Order{ClientID: client.ID}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, store.DB().Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestStore_TransactionCommits(t *testing.T) {
	store := NewGormStore(setupRepositoryTestDB(t))
	ctx := context.Background()

	client := newClient("c1@x.test")
	require.NoError(t, store.Clients().Create(ctx, client))

	err := store.Transaction(ctx, func(tx Store) error {
		return tx.Orders().Create(ctx, &models.Order{ClientID: client.ID})
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, store.DB().Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPage(t *testing.T) {
	assert.Equal(t, Page{Number: 1, PerPage: DefaultPerPage}, NewPage(0, 0))
	assert.Equal(t, Page{Number: 3, PerPage: MaxPerPage}, NewPage(3, 1000))

	huge := NewPage(math.MaxInt, MaxPerPage)
	assert.Equal(t, MaxPageNumber, huge.Number)
	assert.Equal(t, (MaxPageNumber-1)*MaxPerPage, huge.Offset())

	p := NewPage(3, 10)
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, 1, p.LastPage(0))
	assert.Equal(t, 3, p.LastPage(21))
	assert.Equal(t, 2, p.LastPage(20))
}
