package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/shopspring/decimal"
)

// ProductForm represents the multipart form for creating a product
type ProductForm struct {
	Name  string `form:"name" binding:"required,max=255"`
	Price string `form:"price" binding:"required,numeric"`
	Type  string `form:"type" binding:"required,max=100"`
}

// UpdateProductForm represents the multipart form for updating a product.
// Omitted fields are left unchanged.
type UpdateProductForm struct {
	Name  *string `form:"name" binding:"omitempty,min=1,max=255"`
	Price *string `form:"price" binding:"omitempty,numeric"`
	Type  *string `form:"type" binding:"omitempty,min=1,max=100"`
}

// CreateProduct handles POST /api/v1/products - multipart form with an optional photo
func CreateProduct(c *gin.Context) {
	var form ProductForm
	if err := c.ShouldBind(&form); err != nil {
		respondBindingError(c, err)
		return
	}

	price, err := decimal.NewFromString(form.Price)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid request data", map[string]string{"price": "numeric"})
		return
	}

	photo, err := optionalPhoto(c)
	if err != nil {
		respondBindingError(c, err)
		return
	}

	product, err := services.GetProductService().CreateProduct(c.Request.Context(), services.ProductInput{
		Name:  form.Name,
		Price: price,
		Type:  form.Type,
		Photo: photo,
	})
	if err != nil {
		respondServiceError(c, err, "product")
		return
	}
	respondSuccess(c, http.StatusCreated, "Product created successfully", newProductResponse(c.Request.Context(), product))
}

// ListProducts handles GET /api/v1/products
func ListProducts(c *gin.Context) {
	ctx := c.Request.Context()
	page := pageFromQuery(c)

	products, total, err := services.GetProductService().ListProducts(ctx, page)
	if err != nil {
		respondServiceError(c, err, "product")
		return
	}

	data := make([]ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, newProductResponse(ctx, &products[i]))
	}
	respondPage(c, data, page, total)
}

// GetProduct handles GET /api/v1/products/:id
func GetProduct(c *gin.Context) {
	id, ok := pathID(c, "product")
	if !ok {
		return
	}

	product, err := services.GetProductService().GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "product")
		return
	}
	respondSuccess(c, http.StatusOK, "Product retrieved successfully", newProductResponse(c.Request.Context(), product))
}

// UpdateProduct handles PUT /api/v1/products/:id - a new photo replaces the stored one
func UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "product")
	if !ok {
		return
	}

	var form UpdateProductForm
	if err := c.ShouldBind(&form); err != nil {
		respondBindingError(c, err)
		return
	}

	update := services.ProductUpdate{Name: form.Name, Type: form.Type}
	if form.Price != nil {
		price, err := decimal.NewFromString(*form.Price)
		if err != nil {
			respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid request data", map[string]string{"price": "numeric"})
			return
		}
		update.Price = &price
	}

	photo, err := optionalPhoto(c)
	if err != nil {
		respondBindingError(c, err)
		return
	}
	update.Photo = photo

	product, err := services.GetProductService().UpdateProduct(c.Request.Context(), id, update)
	if err != nil {
		respondServiceError(c, err, "product")
		return
	}
	respondSuccess(c, http.StatusOK, "Product updated successfully", newProductResponse(c.Request.Context(), product))
}

// DeleteProduct handles DELETE /api/v1/products/:id - soft-deletes the product
func DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "product")
	if !ok {
		return
	}

	if err := services.GetProductService().DeleteProduct(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "product")
		return
	}
	c.Status(http.StatusNoContent)
}

// optionalPhoto returns the uploaded "photo" file, or nil when none was sent
func optionalPhoto(c *gin.Context) (*multipart.FileHeader, error) {
	photo, err := c.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	return photo, err
}
