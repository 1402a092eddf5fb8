package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"thriftit/backend/internal/service"
	"thriftit/backend/pkg/logger"
	"thriftit/backend/pkg/middleware"
)

// WishlistHandler handles saved-item requests
type WishlistHandler struct {
	wishlist *service.WishlistService
	logger   *logger.Logger
}

func NewWishlistHandler(wishlist *service.WishlistService, logger *logger.Logger) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist, logger: logger}
}

// List returns the caller's saved items with their products
func (h *WishlistHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	items, err := h.wishlist.List(userID)
	if err != nil {
		h.logger.Error("Error listing wishlist", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Add saves a product for the caller
func (h *WishlistHandler) Add(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	productID, err := parseIDParam(c, "productId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID must be a number"})
		return
	}

	if err := h.wishlist.Add(userID, productID); err != nil {
		switch err {
		case service.ErrProductNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case service.ErrOwnProductWishlist:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case service.ErrAlreadyWishlisted:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Error adding to wishlist", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to wishlist"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Added to wishlist"})
}

// Remove drops a saved product
func (h *WishlistHandler) Remove(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	productID, err := parseIDParam(c, "productId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID must be a number"})
		return
	}

	if err := h.wishlist.Remove(userID, productID); err != nil {
		switch err {
		case service.ErrNotInWishlist:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Error removing from wishlist", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove from wishlist"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist"})
}

// Clear empties the caller's wishlist
func (h *WishlistHandler) Clear(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := h.wishlist.Clear(userID); err != nil {
		h.logger.Error("Error clearing wishlist", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Wishlist cleared"})
}

// Check reports whether a product is in the caller's wishlist
func (h *WishlistHandler) Check(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	productID, err := parseIDParam(c, "productId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID must be a number"})
		return
	}

	inWishlist, err := h.wishlist.Contains(userID, productID)
	if err != nil {
		h.logger.Error("Error checking wishlist", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"in_wishlist": inWishlist})
}
