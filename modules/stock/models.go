package stock

import (
	"errors"

	"gorm.io/gorm"
)

// Stock is one book on a member's personal shelf, tracked next to the
// polls but independent of them.
type Stock struct {
	gorm.Model
	UserID    uint   `gorm:"uniqueIndex:stock_idx" json:"-"`
	Isbn      string `gorm:"uniqueIndex:stock_idx" json:"isbn"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	Thumbnail string `json:"thumbnail"`
	Memo      string `json:"memo"`
	Read      bool   `json:"read"`
}

var (
	ErrInvalidIsbn   = errors.New("malformed ISBN")
	ErrStockExists   = errors.New("book is already on the shelf")
	ErrStockNotFound = errors.New("stock not found")
)
