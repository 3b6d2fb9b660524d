package controllers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the client, product, order and upload endpoints on group
func RegisterRoutes(group *gin.RouterGroup) {
	clients := group.Group("/clients")
	{
		clients.GET("", ListClients)
		clients.POST("", CreateClient)
		clients.GET("/:id", GetClient)
		clients.PUT("/:id", UpdateClient)
		clients.DELETE("/:id", DeleteClient)
	}

	products := group.Group("/products")
	{
		products.GET("", ListProducts)
		products.POST("", CreateProduct)
		products.GET("/:id", GetProduct)
		products.PUT("/:id", UpdateProduct)
		products.DELETE("/:id", DeleteProduct)
	}

	orders := group.Group("/orders")
	{
		orders.GET("", ListOrders)
		orders.POST("", CreateOrder)
		orders.GET("/:id", GetOrder)
		orders.PUT("/:id", UpdateOrder)
		orders.DELETE("/:id", DeleteOrder)
	}

	group.GET("/uploads/*filepath", GetUploadedImage)
}
