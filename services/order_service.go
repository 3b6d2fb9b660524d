package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/repositories"
	"go.uber.org/zap"
)

// LineRequest is one requested (product, quantity) pair. Callers never pass a
// price: it is always read from the catalog.
type LineRequest struct {
	ProductID uint
	Quantity  int
}

// UpdateOrderInput carries the optional parts of an order update. A nil
// ClientID leaves the client unchanged; nil Lines leaves the lines unchanged.
type UpdateOrderInput struct {
	ClientID *uint
	Lines    []LineRequest
}

// OrderService is the order transaction engine
type OrderService struct {
	store  repositories.Store
	logger *zap.Logger
}

var orderServiceInstance *OrderService

// NewOrderService creates an order service over store
func NewOrderService(store repositories.Store, logger *zap.Logger) *OrderService {
	return &OrderService{store: store, logger: logger}
}

// InitOrderService initializes the global order service
func InitOrderService(store repositories.Store, logger *zap.Logger) *OrderService {
	orderServiceInstance = NewOrderService(store, logger)
	return orderServiceInstance
}

// GetOrderService returns the initialized order service instance
func GetOrderService() *OrderService {
	return orderServiceInstance
}

// CreateOrder creates an order for clientID with one line per requested
// product, pricing every line from the catalog. Header and lines are written
// in one transaction; any failure inside it rolls everything back and is
// returned as an *OrderProcessingError. The returned order is fully loaded.
func (s *OrderService) CreateOrder(ctx context.Context, clientID uint, lines []LineRequest) (*models.Order, error) {
	lines, err := normalizeLines(lines)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, &clientID, lines); err != nil {
		return nil, err
	}

	var created *models.Order
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.Clients().FindByID(ctx, clientID); err != nil {
			return referenceError("client", clientID, err)
		}

		order := &models.Order{ClientID: clientID}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return fmt.Errorf("create order header: %w", err)
		}

		priced, err := snapshotPrices(ctx, tx, order.ID, lines)
		if err != nil {
			return err
		}
		if err := tx.Orders().CreateLines(ctx, priced); err != nil {
			return fmt.Errorf("create order lines: %w", err)
		}

		created, err = tx.Orders().FindByID(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("reload order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.processingFailed("create", err, zap.Uint("client_id", clientID), zap.Any("lines", lines))
	}

	s.logger.Info("Order created",
		zap.Uint("order_id", created.ID),
		zap.Uint("client_id", clientID),
		zap.Int("lines", len(created.Lines)),
	)
	return created, nil
}

// UpdateOrder changes the client and/or reconciles the lines of an order.
// Lines are re-priced from the catalog and synchronized: products missing
// from the request are removed, new ones are added and present ones get the
// new quantity and current price.
func (s *OrderService) UpdateOrder(ctx context.Context, orderID uint, input UpdateOrderInput) (*models.Order, error) {
	var lines []LineRequest
	if input.Lines != nil {
		var err error
		if lines, err = normalizeLines(input.Lines); err != nil {
			return nil, err
		}
	}

	if _, err := s.store.Orders().FindByID(ctx, orderID); err != nil {
		return nil, referenceError("order", orderID, err)
	}
	if err := s.checkReferences(ctx, input.ClientID, lines); err != nil {
		return nil, err
	}

	var updated *models.Order
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if input.ClientID != nil {
			if err := tx.Orders().UpdateClient(ctx, orderID, *input.ClientID); err != nil {
				return referenceError("order", orderID, err)
			}
		}

		if input.Lines != nil {
			priced, err := snapshotPrices(ctx, tx, orderID, lines)
			if err != nil {
				return err
			}
			if err := tx.Orders().SyncLines(ctx, orderID, priced); err != nil {
				return fmt.Errorf("sync order lines: %w", err)
			}
		}

		var err error
		updated, err = tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return fmt.Errorf("reload order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.processingFailed("update", err, zap.Uint("order_id", orderID), zap.Any("lines", lines))
	}

	s.logger.Info("Order updated", zap.Uint("order_id", orderID), zap.Int("lines", len(updated.Lines)))
	return updated, nil
}

// GetOrder returns the fully loaded order
func (s *OrderService) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, referenceError("order", orderID, err)
	}
	return order, nil
}

// ListOrders returns one page of orders and the total count
func (s *OrderService) ListOrders(ctx context.Context, page repositories.Page) ([]models.Order, int64, error) {
	return s.store.Orders().List(ctx, page)
}

// DeleteOrder soft-deletes an order; its lines are kept for history
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uint) error {
	if err := s.store.Orders().SoftDelete(ctx, orderID); err != nil {
		return referenceError("order", orderID, err)
	}
	return nil
}

// checkReferences verifies the client and products exist before the unit of
// work opens, so common mistakes never cost a rollback.
func (s *OrderService) checkReferences(ctx context.Context, clientID *uint, lines []LineRequest) error {
	if clientID != nil {
		if _, err := s.store.Clients().FindByID(ctx, *clientID); err != nil {
			return referenceError("client", *clientID, err)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	products, err := s.store.Products().FindByIDs(ctx, productIDs(lines))
	if err != nil {
		return err
	}
	for _, line := range lines {
		if _, ok := products[line.ProductID]; !ok {
			return &ReferenceNotFoundError{Entity: "product", ID: line.ProductID}
		}
	}
	return nil
}

func (s *OrderService) processingFailed(action string, cause error, fields ...zap.Field) error {
	fields = append(fields, zap.Error(cause))
	s.logger.Error("Order "+action+" rolled back", fields...)
	return &OrderProcessingError{Action: action, Cause: cause}
}

// snapshotPrices builds the lines for orderID, copying each product's current
// price inside the transaction that writes them.
func snapshotPrices(ctx context.Context, tx repositories.Store, orderID uint, lines []LineRequest) ([]models.OrderLine, error) {
	priced := make([]models.OrderLine, 0, len(lines))
	for _, line := range lines {
		product, err := tx.Products().FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, referenceError("product", line.ProductID, err)
		}
		priced = append(priced, models.OrderLine{
			OrderID:         orderID,
			ProductID:       product.ID,
			Quantity:        line.Quantity,
			PriceAtPurchase: product.Price,
		})
	}
	return priced, nil
}

// normalizeLines validates the requested lines and collapses repeated
// products into one line, the last quantity winning, in first-seen order.
func normalizeLines(lines []LineRequest) ([]LineRequest, error) {
	if len(lines) == 0 {
		return nil, &ValidationError{Field: "products", Reason: "required"}
	}

	index := make(map[uint]int, len(lines))
	normalized := make([]LineRequest, 0, len(lines))
	for i, line := range lines {
		if line.ProductID == 0 {
			return nil, &ValidationError{Field: fmt.Sprintf("products.%d.product_id", i), Reason: "required"}
		}
		if line.Quantity < 1 {
			return nil, &ValidationError{Field: fmt.Sprintf("products.%d.quantity", i), Reason: "min 1"}
		}
		if pos, seen := index[line.ProductID]; seen {
			normalized[pos].Quantity = line.Quantity
			continue
		}
		index[line.ProductID] = len(normalized)
		normalized = append(normalized, line)
	}
	return normalized, nil
}

func productIDs(lines []LineRequest) []uint {
	ids := make([]uint, len(lines))
	for i, line := range lines {
		ids[i] = line.ProductID
	}
	return ids
}

func referenceError(entity string, id uint, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return &ReferenceNotFoundError{Entity: entity, ID: id}
	}
	return err
}
