package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item. Price is the authoritative current price.
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Photo     *string         `gorm:"size:512" json:"photo"` // storage key, resolved to a URL when presented
	Type      string          `gorm:"size:100;index" json:"type"`
	Status    RecordStatus    `gorm:"size:16;not null;default:'active';index" json:"-"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt *time.Time      `json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// IsActive reports whether the product has not been soft-deleted
func (p *Product) IsActive() bool {
	return p.Status == StatusActive
}

// PhotoKey returns the storage key of the photo or an empty string
func (p *Product) PhotoKey() string {
	if p.Photo == nil {
		return ""
	}
	return *p.Photo
}
