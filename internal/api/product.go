package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"thriftit/backend/internal/models"
	"thriftit/backend/internal/service"
	"thriftit/backend/pkg/logger"
	"thriftit/backend/pkg/metrics"
	"thriftit/backend/pkg/middleware"
)

// ProductHandler handles catalog requests
type ProductHandler struct {
	products *service.ProductService
	wishlist *service.WishlistService
	images   *service.ImageService
	logger   *logger.Logger
}

func NewProductHandler(products *service.ProductService, wishlist *service.WishlistService, images *service.ImageService, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{products: products, wishlist: wishlist, images: images, logger: logger}
}

// Create handles a multipart listing form with an image file
func (h *ProductHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req models.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil || file == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrNoFile.Error()})
		return
	}

	stored, err := h.images.Store(file)
	if err != nil {
		switch err {
		case service.ErrInvalidFileType, service.ErrFileTooLarge, service.ErrUnsafeFilename:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Error storing product image", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		}
		return
	}
	metrics.Uploads.Inc()

	product, err := h.products.Create(&req, "/uploads/"+stored, userID)
	if err != nil {
		switch err {
		case service.ErrInvalidProductName, service.ErrInvalidPrice, service.ErrInvalidCategory:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Error creating product", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
		}
		return
	}

	c.JSON(http.StatusCreated, product)
}

// List returns listings filtered by optional search query and category
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.products.List(c.Query("q"), c.Query("category"))
	if err != nil {
		h.logger.Error("Error listing products", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"categories": models.ProductCategories,
	})
}

// Featured returns the most recent listings for the landing page
func (h *ProductHandler) Featured(c *gin.Context) {
	products, err := h.products.Featured()
	if err != nil {
		h.logger.Error("Error fetching featured products", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch featured products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// Get returns one listing with ownership and wishlist context plus a rail
// of other recent listings
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID must be a number"})
		return
	}

	product, err := h.products.Get(id)
	if err != nil {
		switch err {
		case service.ErrProductNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		default:
			h.logger.Error("Error fetching product", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		}
		return
	}

	isOwn := false
	inWishlist := false
	if userID, ok := middleware.UserID(c); ok {
		isOwn = product.SellerID == userID
		if !isOwn {
			inWishlist, _ = h.wishlist.Contains(userID, product.ID)
		}
	}

	recent, err := h.products.Recent(4)
	if err != nil {
		recent = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"product":        product,
		"seller_name":    product.Seller.DisplayName(),
		"is_own_product": isOwn,
		"in_wishlist":    inWishlist,
		"recent":         recent,
	})
}

// Delete removes a listing owned by the caller
func (h *ProductHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID must be a number"})
		return
	}

	product, err := h.products.Delete(id, userID)
	if err != nil {
		switch err {
		case service.ErrProductNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case service.ErrNotProductOwner:
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Error deleting product", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Listing deleted",
		"product": gin.H{"id": product.ID, "name": product.Name},
	})
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	return uint(id), err
}
