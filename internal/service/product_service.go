package service

import (
	"errors"
	"strings"

	"thriftit/backend/internal/models"
	"thriftit/backend/pkg/cache"

	"gorm.io/gorm"
)

var (
	ErrInvalidProductName = errors.New("product name is required and must be less than 100 characters")
	ErrInvalidPrice       = errors.New("price must be greater than 0 and at most 999999")
	ErrInvalidCategory    = errors.New("please select a valid category")
	ErrProductNotFound    = errors.New("product not found")
	ErrNotProductOwner    = errors.New("you can only delete your own products")
)

const featuredCacheKey = "products:featured"

// rentalNote is appended to listings flagged as available for rental.
const rentalNote = "\n\nRENTAL AVAILABLE: This item is also available for rental. Contact me to discuss rental terms and pricing!"

// ProductService handles catalog operations
type ProductService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewProductService creates a new product service
func NewProductService(db *gorm.DB, c *cache.Cache) *ProductService {
	return &ProductService{db: db, cache: c}
}

// Create validates and persists a new listing. The image has already been
// stored; imageRef is its filename or URL.
func (s *ProductService) Create(req *models.CreateProductRequest, imageRef string, sellerID uint) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 100 {
		return nil, ErrInvalidProductName
	}
	if req.Price <= 0 || req.Price > 999999 {
		return nil, ErrInvalidPrice
	}
	if !models.ValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}

	condition := strings.TrimSpace(req.Condition)
	if condition == "" {
		condition = "Unknown"
	}

	description := strings.TrimSpace(req.Description)
	if req.ForRental {
		description += rentalNote
	}

	product := &models.Product{
		Name:        name,
		Price:       req.Price,
		Image:       imageRef,
		Description: description,
		Category:    req.Category,
		Condition:   condition,
		ForRental:   req.ForRental,
		SellerID:    sellerID,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Delete(featuredCacheKey)
	}
	return product, nil
}

// List returns products newest first, optionally filtered by a name search
// and/or category.
func (s *ProductService) List(search, category string) ([]models.Product, error) {
	query := s.db.Model(&models.Product{})

	if category != "" {
		query = query.Where("category = ?", category)
	}

	search = strings.TrimSpace(search)
	if search != "" {
		if len(search) > 100 {
			search = search[:100]
		}
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var products []models.Product
	err := query.Order("id DESC").Find(&products).Error
	return products, err
}

// Featured returns the latest four listings, cached briefly since the
// homepage hits it on every load.
func (s *ProductService) Featured() ([]models.Product, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(featuredCacheKey); ok {
			return cached.([]models.Product), nil
		}
	}

	var products []models.Product
	if err := s.db.Order("id DESC").Limit(4).Find(&products).Error; err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(featuredCacheKey, products)
	}
	return products, nil
}

// Get retrieves a product by ID
func (s *ProductService) Get(id uint) (*models.Product, error) {
	var product models.Product
	result := s.db.Preload("Seller").First(&product, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}
	return &product, nil
}

// Recent returns the latest listings up to the given limit, for the
// product-detail side rail.
func (s *ProductService) Recent(limit int) ([]models.Product, error) {
	var products []models.Product
	err := s.db.Order("id DESC").Limit(limit).Find(&products).Error
	return products, err
}

// Delete removes a listing and its wishlist references. Only the seller may
// delete their own product.
func (s *ProductService) Delete(id, callerID uint) (*models.Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if product.SellerID != callerID {
		return nil, ErrNotProductOwner
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Wishlist rows reference the product, clear them first.
		if err := tx.Where("product_id = ?", id).Delete(&models.Wishlist{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Delete(featuredCacheKey)
	}
	return product, nil
}
