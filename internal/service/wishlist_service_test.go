package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thriftit/backend/internal/models"
	"gorm.io/gorm"
)

func seedProduct(t *testing.T, db *gorm.DB, sellerID uint, name string) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:      name,
		Price:     10,
		Image:     "/uploads/x.png",
		Category:  "Books",
		Condition: "Good",
		SellerID:  sellerID,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestWishlistAdd(t *testing.T) {
	db := newTestDB(t)
	svc := NewWishlistService(db)
	seller := seedUser(t, db, "seller01", "Seller")
	buyer := seedUser(t, db, "buyer02", "Buyer")
	product := seedProduct(t, db, seller.ID, "Textbook")

	assert.ErrorIs(t, svc.Add(buyer.ID, 999), ErrProductNotFound)
	assert.ErrorIs(t, svc.Add(seller.ID, product.ID), ErrOwnProductWishlist)

	require.NoError(t, svc.Add(buyer.ID, product.ID))
	assert.ErrorIs(t, svc.Add(buyer.ID, product.ID), ErrAlreadyWishlisted)

	in, err := svc.Contains(buyer.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, in)
}

func TestWishlistRemove(t *testing.T) {
	db := newTestDB(t)
	svc := NewWishlistService(db)
	seller := seedUser(t, db, "seller01", "Seller")
	buyer := seedUser(t, db, "buyer02", "Buyer")
	product := seedProduct(t, db, seller.ID, "Textbook")

	assert.ErrorIs(t, svc.Remove(buyer.ID, product.ID), ErrNotInWishlist)

	require.NoError(t, svc.Add(buyer.ID, product.ID))
	require.NoError(t, svc.Remove(buyer.ID, product.ID))

	in, err := svc.Contains(buyer.ID, product.ID)
	require.NoError(t, err)
	assert.False(t, in)
}

func TestWishlistListAndClear(t *testing.T) {
	db := newTestDB(t)
	svc := NewWishlistService(db)
	seller := seedUser(t, db, "seller01", "Seller")
	buyer := seedUser(t, db, "buyer02", "Buyer")
	first := seedProduct(t, db, seller.ID, "Textbook")
	second := seedProduct(t, db, seller.ID, "Laptop Stand")

	require.NoError(t, svc.Add(buyer.ID, first.ID))
	require.NoError(t, svc.Add(buyer.ID, second.ID))

	items, err := svc.List(buyer.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	// Products come preloaded
	assert.NotEmpty(t, items[0].Product.Name)

	require.NoError(t, svc.Clear(buyer.ID))

	items, err = svc.List(buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
