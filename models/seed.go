package models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StarterCatalog is the menu a fresh storefront opens with
var StarterCatalog = []Product{
	{Name: "Pastel Frango com Queijo", Price: decimal.RequireFromString("15.00"), Type: "Pastéis"},
	{Name: "Pastel Carne com Queijo", Price: decimal.RequireFromString("15.25"), Type: "Pastéis"},
	{Name: "Pastel de Frango com Catupiry", Price: decimal.RequireFromString("15.00"), Type: "Pastéis"},
	{Name: "Pastel de Carne com Catupiry", Price: decimal.RequireFromString("15.50"), Type: "Pastéis"},
	{Name: "Coxinha Tradicional", Price: decimal.RequireFromString("10.00"), Type: "Coxinhas"},
	{Name: "Coxinha de Frango com Catupiry", Price: decimal.RequireFromString("10.00"), Type: "Coxinhas"},
	{Name: "Coxinha de Carne Seca", Price: decimal.RequireFromString("10.25"), Type: "Coxinhas"},
	{Name: "Coxinha de Palmito", Price: decimal.RequireFromString("10.00"), Type: "Coxinhas"},
	{Name: "Hambúrguer Clássico", Price: decimal.RequireFromString("20.00"), Type: "Hambúrgueres"},
	{Name: "Hambúrguer Cheddar Bacon", Price: decimal.RequireFromString("25.00"), Type: "Hambúrgueres"},
	{Name: "Hambúrguer Vegano", Price: decimal.RequireFromString("22.00"), Type: "Hambúrgueres"},
	{Name: "Batata Frita Grande", Price: decimal.RequireFromString("15.00"), Type: "Acompanhamentos"},
	{Name: "Batata Frita Pequena", Price: decimal.RequireFromString("10.00"), Type: "Acompanhamentos"},
}

// SeedCatalog inserts StarterCatalog when the products table is empty, deleted
// rows included. It returns the number of products inserted.
func SeedCatalog(db *gorm.DB) (int, error) {
	var inserted int
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Product{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		if count > 0 {
			return nil
		}

		products := make([]Product, len(StarterCatalog))
		for i, p := range StarterCatalog {
			p.Status = StatusActive
			products[i] = p
		}
		if err := tx.Create(&products).Error; err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		inserted = len(products)
		return nil
	})
	return inserted, err
}
