package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/services"
)

// CreateClientRequest represents the request body for creating a client
type CreateClientRequest struct {
	Name         string  `json:"name" binding:"required,max=255"`
	Email        string  `json:"email" binding:"required,email,max=255"`
	Phone        string  `json:"phone" binding:"required,max=20"`
	BirthDate    string  `json:"birth_date" binding:"required,datetime=2006-01-02"`
	Address      string  `json:"address" binding:"required,max=255"`
	Complement   *string `json:"complement" binding:"omitempty,max=255"`
	Neighborhood string  `json:"neighborhood" binding:"required,max=255"`
	ZipCode      string  `json:"zip_code" binding:"required,zipcode"`
}

// UpdateClientRequest represents the request body for updating a client.
// Omitted fields are left unchanged.
type UpdateClientRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=255"`
	Email        *string `json:"email" binding:"omitempty,email,max=255"`
	Phone        *string `json:"phone" binding:"omitempty,min=1,max=20"`
	BirthDate    *string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	Address      *string `json:"address" binding:"omitempty,min=1,max=255"`
	Complement   *string `json:"complement" binding:"omitempty,max=255"`
	Neighborhood *string `json:"neighborhood" binding:"omitempty,min=1,max=255"`
	ZipCode      *string `json:"zip_code" binding:"omitempty,zipcode"`
}

// CreateClient handles POST /api/v1/clients
func CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	// Format already checked by the datetime rule
	birthDate, _ := time.Parse(dateLayout, req.BirthDate)

	client, err := services.GetClientService().CreateClient(c.Request.Context(), services.ClientInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		BirthDate:    birthDate,
		Address:      req.Address,
		Complement:   req.Complement,
		Neighborhood: req.Neighborhood,
		ZipCode:      req.ZipCode,
	})
	if err != nil {
		respondServiceError(c, err, "client")
		return
	}
	respondSuccess(c, http.StatusCreated, "Client created successfully", newClientResponse(client))
}

// ListClients handles GET /api/v1/clients
func ListClients(c *gin.Context) {
	page := pageFromQuery(c)

	clients, total, err := services.GetClientService().ListClients(c.Request.Context(), page)
	if err != nil {
		respondServiceError(c, err, "client")
		return
	}

	data := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		data = append(data, newClientResponse(&clients[i]))
	}
	respondPage(c, data, page, total)
}

// GetClient handles GET /api/v1/clients/:id - returns the client with its orders
func GetClient(c *gin.Context) {
	id, ok := pathID(c, "client")
	if !ok {
		return
	}

	client, err := services.GetClientService().GetClient(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "client")
		return
	}
	respondSuccess(c, http.StatusOK, "Client retrieved successfully", newClientWithOrdersResponse(c.Request.Context(), client))
}

// UpdateClient handles PUT /api/v1/clients/:id
func UpdateClient(c *gin.Context) {
	id, ok := pathID(c, "client")
	if !ok {
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	update := services.ClientUpdate{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Complement:   req.Complement,
		Neighborhood: req.Neighborhood,
		ZipCode:      req.ZipCode,
	}
	if req.BirthDate != nil {
		birthDate, _ := time.Parse(dateLayout, *req.BirthDate)
		update.BirthDate = &birthDate
	}

	client, err := services.GetClientService().UpdateClient(c.Request.Context(), id, update)
	if err != nil {
		respondServiceError(c, err, "client")
		return
	}
	respondSuccess(c, http.StatusOK, "Client updated successfully", newClientResponse(client))
}

// DeleteClient handles DELETE /api/v1/clients/:id - soft-deletes the client
func DeleteClient(c *gin.Context) {
	id, ok := pathID(c, "client")
	if !ok {
		return
	}

	if err := services.GetClientService().DeleteClient(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "client")
		return
	}
	c.Status(http.StatusNoContent)
}
