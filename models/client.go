package models

import (
	"time"
)

// Client represents a customer who places orders
type Client struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"size:255;not null" json:"name"`
	Email        string       `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone        string       `gorm:"size:20;not null" json:"phone"`
	BirthDate    time.Time    `gorm:"type:date;not null" json:"birth_date"`
	Address      string       `gorm:"size:255;not null" json:"address"`
	Complement   *string      `gorm:"size:255" json:"complement"`
	Neighborhood string       `gorm:"size:255;not null" json:"neighborhood"`
	ZipCode      string       `gorm:"size:9;not null" json:"zip_code"` // NNNNN-NNN
	Status       RecordStatus `gorm:"size:16;not null;default:'active';index" json:"-"`
	Orders       []Order      `gorm:"foreignKey:ClientID" json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	DeletedAt    *time.Time   `json:"-"`
}

// TableName specifies the table name for the Client model
func (Client) TableName() string {
	return "clients"
}

// IsActive reports whether the client has not been soft-deleted
func (c *Client) IsActive() bool {
	return c.Status == StatusActive
}
