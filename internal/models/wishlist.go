package models

import (
	"time"
)

// Wishlist links a user to a product they have saved. A user can only save
// a given product once, enforced by the composite unique index.
type Wishlist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_user_product" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"product"`
	DateAdded time.Time `gorm:"autoCreateTime" json:"date_added"`
}
