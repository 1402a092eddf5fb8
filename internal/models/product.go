package models

import (
	"time"
)

// Product categories accepted by the catalog.
var ProductCategories = []string{"Books", "Tech", "Clothes", "Others"}

// Product represents an item listed for sale
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Price       float64   `gorm:"not null" json:"price"`
	Image       string    `gorm:"size:500;not null" json:"image"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"size:50;not null;index" json:"category"`
	Condition   string    `gorm:"size:50;not null" json:"condition"`
	ForRental   bool      `gorm:"default:false" json:"for_rental"`
	SellerID    uint      `gorm:"index;not null" json:"seller_id"`
	Seller      User      `gorm:"foreignKey:SellerID" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProductRequest carries the listing form fields. The image arrives as
// a separate multipart file part.
type CreateProductRequest struct {
	Name        string  `form:"name"`
	Price       float64 `form:"price"`
	Category    string  `form:"category"`
	Condition   string  `form:"condition"`
	Description string  `form:"description"`
	ForRental   bool    `form:"for_rental"`
}

// ValidCategory reports whether the given category is one the catalog accepts.
func ValidCategory(category string) bool {
	for _, c := range ProductCategories {
		if c == category {
			return true
		}
	}
	return false
}
