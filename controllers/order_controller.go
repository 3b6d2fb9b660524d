package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/config"
	"github.com/kendall-kelly/storefront-api/services"
	"go.uber.org/zap"
)

// LineItemRequest is one requested product. Any price sent by the caller is
// not part of the request and is dropped while decoding.
type LineItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	ClientID uint              `json:"client_id" binding:"required"`
	Products []LineItemRequest `json:"products" binding:"required,min=1,dive"`
}

// UpdateOrderRequest represents the request body for updating an order.
// Omitted fields are left unchanged.
type UpdateOrderRequest struct {
	ClientID *uint              `json:"client_id" binding:"omitempty,min=1"`
	Products *[]LineItemRequest `json:"products" binding:"omitempty,dive"`
}

func toLineRequests(items []LineItemRequest) []services.LineRequest {
	lines := make([]services.LineRequest, len(items))
	for i, item := range items {
		lines[i] = services.LineRequest{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return lines
}

// CreateOrder handles POST /api/v1/orders - creates an order and sends the confirmation
func CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	ctx := c.Request.Context()
	order, err := services.GetOrderService().CreateOrder(ctx, req.ClientID, toLineRequests(req.Products))
	if err != nil {
		respondServiceError(c, err, "order")
		return
	}

	// The order is committed at this point; a notification failure is only logged
	if notifier := services.GetNotifier(); notifier != nil {
		if err := notifier.Notify(ctx, order); err != nil {
			config.GetLogger().Warn("Failed to enqueue order confirmation",
				zap.Uint("order_id", order.ID),
				zap.String("to", order.Client.Email),
				zap.Error(err),
			)
		}
	}

	respondSuccess(c, http.StatusCreated, "Order created successfully", newOrderResponse(ctx, order))
}

// ListOrders handles GET /api/v1/orders - lists orders page by page
func ListOrders(c *gin.Context) {
	ctx := c.Request.Context()
	page := pageFromQuery(c)

	orders, total, err := services.GetOrderService().ListOrders(ctx, page)
	if err != nil {
		respondServiceError(c, err, "order")
		return
	}

	data := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		data = append(data, newOrderResponse(ctx, &orders[i]))
	}
	respondPage(c, data, page, total)
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	id, ok := pathID(c, "order")
	if !ok {
		return
	}

	order, err := services.GetOrderService().GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "order")
		return
	}
	respondSuccess(c, http.StatusOK, "Order retrieved successfully", newOrderResponse(c.Request.Context(), order))
}

// UpdateOrder handles PUT /api/v1/orders/:id - changes the client and/or
// synchronizes the lines. No confirmation is sent.
func UpdateOrder(c *gin.Context) {
	id, ok := pathID(c, "order")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	input := services.UpdateOrderInput{ClientID: req.ClientID}
	if req.Products != nil {
		input.Lines = toLineRequests(*req.Products)
	}

	order, err := services.GetOrderService().UpdateOrder(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err, "order")
		return
	}
	respondSuccess(c, http.StatusOK, "Order updated successfully", newOrderResponse(c.Request.Context(), order))
}

// DeleteOrder handles DELETE /api/v1/orders/:id - soft-deletes the order
func DeleteOrder(c *gin.Context) {
	id, ok := pathID(c, "order")
	if !ok {
		return
	}

	if err := services.GetOrderService().DeleteOrder(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "order")
		return
	}
	c.Status(http.StatusNoContent)
}
