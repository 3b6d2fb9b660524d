package models

import (
	"time"

	"gorm.io/gorm"
)

// RecordStatus is the logical lifecycle state of a client, product or order.
type RecordStatus string

const (
	StatusActive  RecordStatus = "active"
	StatusDeleted RecordStatus = "deleted"
)

// Active restricts a query to records that have not been soft-deleted.
// Every default lookup goes through this scope.
func Active(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", StatusActive)
}

// SoftDeleteUpdates returns the column changes that mark a record as deleted
// while keeping the row for history.
func SoftDeleteUpdates(at time.Time) map[string]interface{} {
	return map[string]interface{}{
		"status":     StatusDeleted,
		"deleted_at": at,
	}
}
