package repositories

import "gorm.io/gorm"

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
	// MaxPageNumber keeps Offset far from integer overflow
	MaxPageNumber = 1_000_000
)

// Page selects a window of a listing. Number starts at 1.
type Page struct {
	Number  int
	PerPage int
}

// NewPage normalises page and perPage into a usable window
func NewPage(number, perPage int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Page{Number: number, PerPage: perPage}
}

// Offset is the number of rows skipped before this page
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// LastPage computes the last page number for total rows
func (p Page) LastPage(total int64) int {
	if total == 0 {
		return 1
	}
	perPage := int64(p.PerPage)
	return int((total + perPage - 1) / perPage)
}

func (p Page) scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.PerPage)
}
