package repositories

import (
	"context"
	"time"

	"github.com/kendall-kelly/storefront-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormOrderRepository struct {
	db *gorm.DB
}

func orderLinesByInsertion(db *gorm.DB) *gorm.DB {
	return db.Order("order_lines.id ASC")
}

// loadAggregate preloads the client and every line with its product. Products
// are loaded regardless of status so historical lines keep their details.
func loadAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Client").
		Preload("Lines", orderLinesByInsertion).
		Preload("Lines.Product")
}

func (r *gormOrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Scopes(models.Active, loadAggregate).First(&order, id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *gormOrderRepository) List(ctx context.Context, page Page) ([]models.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Scopes(models.Active).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := r.db.WithContext(ctx).
		Scopes(models.Active, loadAggregate, page.scope).
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Create inserts the order header only; lines are written with CreateLines
func (r *gormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	order.Status = models.StatusActive
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

// CreateLines inserts every line in a single batch
func (r *gormOrderRepository) CreateLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&lines).Error
}

// SyncLines reconciles the stored lines of orderID with lines: lines for
// products no longer present are deleted, new products are inserted and
// existing products get quantity and price overwritten.
func (r *gormOrderRepository) SyncLines(ctx context.Context, orderID uint, lines []models.OrderLine) error {
	db := r.db.WithContext(ctx)

	var existing []models.OrderLine
	if err := db.Where("order_id = ?", orderID).Find(&existing).Error; err != nil {
		return err
	}

	stored := make(map[uint]models.OrderLine, len(existing))
	for _, line := range existing {
		stored[line.ProductID] = line
	}

	keep := make(map[uint]bool, len(lines))
	var inserts []models.OrderLine
	for _, line := range lines {
		keep[line.ProductID] = true

		current, ok := stored[line.ProductID]
		if !ok {
			line.ID = 0
			line.OrderID = orderID
			inserts = append(inserts, line)
			continue
		}

		err := db.Model(&models.OrderLine{}).
			Where("id = ?", current.ID).
			Updates(map[string]interface{}{
				"quantity":          line.Quantity,
				"price_at_purchase": line.PriceAtPurchase,
				"updated_at":        time.Now(),
			}).Error
		if err != nil {
			return err
		}
	}

	var stale []uint
	for productID, line := range stored {
		if !keep[productID] {
			stale = append(stale, line.ID)
		}
	}
	if len(stale) > 0 {
		if err := db.Where("id IN ?", stale).Delete(&models.OrderLine{}).Error; err != nil {
			return err
		}
	}

	if len(inserts) > 0 {
		if err := db.Omit(clause.Associations).Create(&inserts).Error; err != nil {
			return err
		}
	}

	// Touch the header so updated_at reflects the line change
	return db.Model(&models.Order{}).Where("id = ?", orderID).Update("updated_at", time.Now()).Error
}

func (r *gormOrderRepository) UpdateClient(ctx context.Context, orderID, clientID uint) error {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Scopes(models.Active).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{"client_id": clientID, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormOrderRepository) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Scopes(models.Active).
		Where("id = ?", id).
		Updates(models.SoftDeleteUpdates(time.Now()))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
