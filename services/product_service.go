package services

import (
	"context"
	"mime/multipart"

	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/repositories"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductInput carries the fields of a new product. Photo is optional.
type ProductInput struct {
	Name  string
	Price decimal.Decimal
	Type  string
	Photo *multipart.FileHeader
}

// ProductUpdate carries the fields to change on a product; nil fields are left as they are
type ProductUpdate struct {
	Name  *string
	Price *decimal.Decimal
	Type  *string
	Photo *multipart.FileHeader
}

// ProductService manages the catalog
type ProductService struct {
	store  repositories.Store
	images ImageService
	logger *zap.Logger
}

var productServiceInstance *ProductService

// NewProductService creates a product service storing photos through images
func NewProductService(store repositories.Store, images ImageService, logger *zap.Logger) *ProductService {
	return &ProductService{store: store, images: images, logger: logger}
}

// InitProductService initializes the global product service
func InitProductService(store repositories.Store, images ImageService, logger *zap.Logger) *ProductService {
	productServiceInstance = NewProductService(store, images, logger)
	return productServiceInstance
}

// GetProductService returns the initialized product service instance
func GetProductService() *ProductService {
	return productServiceInstance
}

// CreateProduct uploads the optional photo and stores the product. The photo
// is removed again if the product cannot be stored.
func (s *ProductService) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:  input.Name,
		Price: input.Price.Round(2),
		Type:  input.Type,
	}

	if input.Photo != nil {
		key, err := s.images.UploadImage(ctx, input.Photo)
		if err != nil {
			return nil, err
		}
		product.Photo = &key
	}

	if err := s.store.Products().Create(ctx, product); err != nil {
		s.discardPhoto(ctx, product.PhotoKey())
		return nil, err
	}

	s.logger.Info("Product created", zap.Uint("product_id", product.ID), zap.String("price", product.Price.StringFixed(2)))
	return product, nil
}

// GetProduct returns an active product
func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		return nil, referenceError("product", id, err)
	}
	return product, nil
}

// ListProducts returns one page of active products and the total count
func (s *ProductService) ListProducts(ctx context.Context, page repositories.Page) ([]models.Product, int64, error) {
	return s.store.Products().List(ctx, page)
}

// UpdateProduct applies the non-nil fields of update. A new photo replaces
// the stored one, which is deleted after the product row has been updated.
// Existing order lines keep their price snapshot.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, update ProductUpdate) (*models.Product, error) {
	product, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		return nil, referenceError("product", id, err)
	}

	updates := map[string]interface{}{}
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Price != nil {
		if err := validatePrice(*update.Price); err != nil {
			return nil, err
		}
		updates["price"] = update.Price.Round(2)
	}
	if update.Type != nil {
		updates["type"] = *update.Type
	}

	oldPhoto := product.PhotoKey()
	newPhoto := ""
	if update.Photo != nil {
		newPhoto, err = s.images.UploadImage(ctx, update.Photo)
		if err != nil {
			return nil, err
		}
		updates["photo"] = newPhoto
	}

	if err := s.store.Products().Update(ctx, product, updates); err != nil {
		s.discardPhoto(ctx, newPhoto)
		return nil, err
	}
	if newPhoto != "" {
		s.discardPhoto(ctx, oldPhoto)
	}

	updated, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		return nil, referenceError("product", id, err)
	}
	return updated, nil
}

// DeleteProduct soft-deletes a product. The photo stays in storage because
// historical orders still present it.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.store.Products().SoftDelete(ctx, id); err != nil {
		return referenceError("product", id, err)
	}
	s.logger.Info("Product deleted", zap.Uint("product_id", id))
	return nil
}

func (s *ProductService) discardPhoto(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.DeleteImage(ctx, key); err != nil {
		s.logger.Warn("Failed to delete photo", zap.String("key", key), zap.Error(err))
	}
}

// maxPrice is the smallest amount a decimal(10,2) column cannot store
var maxPrice = decimal.NewFromInt(100_000_000)

// validatePrice checks the price as it will be stored, rounded to cents
func validatePrice(price decimal.Decimal) error {
	rounded := price.Round(2)
	if !rounded.IsPositive() {
		return &ValidationError{Field: "price", Reason: "must be greater than 0"}
	}
	if rounded.GreaterThanOrEqual(maxPrice) {
		return &ValidationError{Field: "price", Reason: "must be less than 100000000"}
	}
	return nil
}
