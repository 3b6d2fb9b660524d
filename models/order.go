package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the header of an order aggregate; Lines hold the purchased products.
type Order struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	ClientID  uint         `gorm:"not null;index" json:"client_id"`
	Client    Client       `gorm:"foreignKey:ClientID" json:"client"`
	Lines     []OrderLine  `gorm:"foreignKey:OrderID" json:"lines"`
	Status    RecordStatus `gorm:"size:16;not null;default:'active';index" json:"-"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	DeletedAt *time.Time   `json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// Total is the sum of every line subtotal
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].Subtotal())
	}
	return total
}

// OrderLine associates a product with an order, holding the quantity and the
// price copied from the catalog when the line was written.
type OrderLine struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderID         uint            `gorm:"not null;uniqueIndex:idx_order_lines_order_product" json:"order_id"`
	ProductID       uint            `gorm:"not null;uniqueIndex:idx_order_lines_order_product;index" json:"product_id"`
	Product         Product         `gorm:"foreignKey:ProductID" json:"product"`
	Quantity        int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	PriceAtPurchase decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_at_purchase"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the OrderLine model
func (OrderLine) TableName() string {
	return "order_lines"
}

// Subtotal is quantity times the snapshotted price
func (l *OrderLine) Subtotal() decimal.Decimal {
	return l.PriceAtPurchase.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
