package controllers

import (
	"context"
	"time"

	"github.com/kendall-kelly/storefront-api/config"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/services"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// ClientSummary is the client as embedded in an order
type ClientSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ClientResponse is the full client representation
type ClientResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	BirthDate    string    `json:"birth_date"`
	Address      string    `json:"address"`
	Complement   *string   `json:"complement"`
	Neighborhood string    `json:"neighborhood"`
	ZipCode      string    `json:"zip_code"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ClientWithOrdersResponse is a client together with its orders. The orders
// do not repeat the client.
type ClientWithOrdersResponse struct {
	ClientResponse
	Orders []ClientOrderResponse `json:"orders"`
}

// ProductResponse is the catalog representation of a product
type ProductResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	PhotoURL  *string   `json:"photo_url"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderLineResponse is one purchased product. PriceAtPurchase is what the
// client paid; CurrentPrice is today's catalog price.
type OrderLineResponse struct {
	ProductID       uint    `json:"product_id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	PhotoURL        *string `json:"photo_url"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase string  `json:"price_at_purchase"`
	CurrentPrice    string  `json:"current_price"`
	Subtotal        string  `json:"subtotal"`
}

// ClientOrderResponse is an order as listed under its client
type ClientOrderResponse struct {
	ID        uint                `json:"id"`
	Lines     []OrderLineResponse `json:"lines"`
	Total     string              `json:"total"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// OrderResponse is an order with its client summary
type OrderResponse struct {
	ID        uint                `json:"id"`
	Client    ClientSummary       `json:"client"`
	Lines     []OrderLineResponse `json:"lines"`
	Total     string              `json:"total"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// photoURL resolves a stored photo key through the configured image service
func photoURL(ctx context.Context, product *models.Product) *string {
	key := product.PhotoKey()
	images := services.GetImageService()
	if key == "" || images == nil {
		return nil
	}
	url, err := images.GetImageURL(ctx, key)
	if err != nil {
		config.GetLogger().Warn("Failed to resolve photo URL", zap.Uint("product_id", product.ID), zap.Error(err))
		return nil
	}
	return &url
}

func newClientSummary(client *models.Client) ClientSummary {
	return ClientSummary{
		ID:    client.ID,
		Name:  client.Name,
		Email: client.Email,
		Phone: client.Phone,
	}
}

func newClientResponse(client *models.Client) ClientResponse {
	return ClientResponse{
		ID:           client.ID,
		Name:         client.Name,
		Email:        client.Email,
		Phone:        client.Phone,
		BirthDate:    client.BirthDate.Format(dateLayout),
		Address:      client.Address,
		Complement:   client.Complement,
		Neighborhood: client.Neighborhood,
		ZipCode:      client.ZipCode,
		CreatedAt:    client.CreatedAt,
		UpdatedAt:    client.UpdatedAt,
	}
}

func newClientWithOrdersResponse(ctx context.Context, client *models.Client) ClientWithOrdersResponse {
	orders := make([]ClientOrderResponse, 0, len(client.Orders))
	for i := range client.Orders {
		order := &client.Orders[i]
		orders = append(orders, ClientOrderResponse{
			ID:        order.ID,
			Lines:     newOrderLineResponses(ctx, order.Lines),
			Total:     order.Total().StringFixed(2),
			CreatedAt: order.CreatedAt,
			UpdatedAt: order.UpdatedAt,
		})
	}
	return ClientWithOrdersResponse{
		ClientResponse: newClientResponse(client),
		Orders:         orders,
	}
}

func newProductResponse(ctx context.Context, product *models.Product) ProductResponse {
	return ProductResponse{
		ID:        product.ID,
		Name:      product.Name,
		Price:     product.Price.StringFixed(2),
		PhotoURL:  photoURL(ctx, product),
		Type:      product.Type,
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}

func newOrderLineResponses(ctx context.Context, lines []models.OrderLine) []OrderLineResponse {
	responses := make([]OrderLineResponse, 0, len(lines))
	for i := range lines {
		line := &lines[i]
		responses = append(responses, OrderLineResponse{
			ProductID:       line.ProductID,
			Name:            line.Product.Name,
			Type:            line.Product.Type,
			PhotoURL:        photoURL(ctx, &line.Product),
			Quantity:        line.Quantity,
			PriceAtPurchase: line.PriceAtPurchase.StringFixed(2),
			CurrentPrice:    line.Product.Price.StringFixed(2),
			Subtotal:        line.Subtotal().StringFixed(2),
		})
	}
	return responses
}

func newOrderResponse(ctx context.Context, order *models.Order) OrderResponse {
	return OrderResponse{
		ID:        order.ID,
		Client:    newClientSummary(&order.Client),
		Lines:     newOrderLineResponses(ctx, order.Lines),
		Total:     order.Total().StringFixed(2),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}
