package repositories

import (
	"context"
	"time"

	"github.com/kendall-kelly/storefront-api/models"
	"gorm.io/gorm"
)

type gormProductRepository struct {
	db *gorm.DB
}

func (r *gormProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Scopes(models.Active).First(&product, id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByIDs returns the active products among ids keyed by id. Missing or
// deleted ids are simply absent from the result.
func (r *gormProductRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	found := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var products []models.Product
	if err := r.db.WithContext(ctx).Scopes(models.Active).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		found[p.ID] = p
	}
	return found, nil
}

func (r *gormProductRepository) List(ctx context.Context, page Page) ([]models.Product, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Scopes(models.Active).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	if err := r.db.WithContext(ctx).Scopes(models.Active, page.scope).Order("id ASC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *gormProductRepository) Create(ctx context.Context, product *models.Product) error {
	product.Status = models.StatusActive
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *gormProductRepository) Update(ctx context.Context, product *models.Product, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(product).Updates(updates).Error
}

func (r *gormProductRepository) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Product{}).
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
