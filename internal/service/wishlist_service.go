package service

import (
	"errors"

	"thriftit/backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrOwnProductWishlist = errors.New("cannot add your own product to wishlist")
	ErrAlreadyWishlisted  = errors.New("item already in wishlist")
	ErrNotInWishlist      = errors.New("item not in wishlist")
)

// WishlistService handles saved-item operations
type WishlistService struct {
	db *gorm.DB
}

// NewWishlistService creates a new wishlist service
func NewWishlistService(db *gorm.DB) *WishlistService {
	return &WishlistService{db: db}
}

// Add saves a product to the user's wishlist
func (s *WishlistService) Add(userID, productID uint) error {
	var product models.Product
	result := s.db.First(&product, productID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return result.Error
	}

	if product.SellerID == userID {
		return ErrOwnProductWishlist
	}

	var existing models.Wishlist
	if s.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing).RowsAffected > 0 {
		return ErrAlreadyWishlisted
	}

	return s.db.Create(&models.Wishlist{UserID: userID, ProductID: productID}).Error
}

// Remove deletes a product from the user's wishlist
func (s *WishlistService) Remove(userID, productID uint) error {
	result := s.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Wishlist{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotInWishlist
	}
	return nil
}

// Clear removes every wishlist entry for the user
func (s *WishlistService) Clear(userID uint) error {
	return s.db.Where("user_id = ?", userID).Delete(&models.Wishlist{}).Error
}

// Contains reports whether a product is in the user's wishlist
func (s *WishlistService) Contains(userID, productID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Wishlist{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

// List returns the user's wishlist entries with their products preloaded
func (s *WishlistService) List(userID uint) ([]models.Wishlist, error) {
	var items []models.Wishlist
	err := s.db.Preload("Product").
		Where("user_id = ?", userID).
		Order("date_added DESC").
		Find(&items).Error
	return items, err
}
