package repositories

import (
	"context"
	"time"

	"github.com/kendall-kelly/storefront-api/models"
	"gorm.io/gorm"
)

type gormClientRepository struct {
	db *gorm.DB
}

func (r *gormClientRepository) FindByID(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).Scopes(models.Active).First(&client, id).Error; err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

// FindWithOrders loads the client together with its active orders and their lines
func (r *gormClientRepository) FindWithOrders(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Scopes(models.Active).
		Preload("Orders", func(db *gorm.DB) *gorm.DB {
			return db.Scopes(models.Active).Order("orders.id ASC")
		}).
		Preload("Orders.Lines", orderLinesByInsertion).
		Preload("Orders.Lines.Product").
		First(&client, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

func (r *gormClientRepository) List(ctx context.Context, page Page) ([]models.Client, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Client{}).Scopes(models.Active).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []models.Client
	if err := r.db.WithContext(ctx).Scopes(models.Active, page.scope).Order("id ASC").Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *gormClientRepository) Create(ctx context.Context, client *models.Client) error {
	client.Status = models.StatusActive
	return translate(r.db.WithContext(ctx).Omit("Orders").Create(client).Error)
}

func (r *gormClientRepository) Update(ctx context.Context, client *models.Client, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Model(client).Omit("Orders").Updates(updates).Error)
}

func (r *gormClientRepository) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Client{}).
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

// EmailTaken checks every row, deleted ones included, because the unique
// index on email covers them too.
func (r *gormClientRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Client{}).Where("LOWER(email) = LOWER(?)", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
