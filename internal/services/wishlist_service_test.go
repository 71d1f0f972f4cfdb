package services_test

import (
	"context"
	"testing"

	"mixmodas/internal/models"
	"mixmodas/internal/repositories"
	"mixmodas/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWishlistFixture(t *testing.T) (*services.WishlistService, *repositories.MemoryProductRepository, *repositories.MemoryWishlistRepository) {
	t.Helper()
	products := repositories.NewMemoryProductRepository()
	wishlist := repositories.NewMemoryWishlistRepository()
	return services.NewWishlistService(wishlist, products), products, wishlist
}

func TestWishlistService_AddAndList(t *testing.T) {
	ctx := context.Background()
	service, products, _ := newWishlistFixture(t)

	vestido := &models.Product{Name: "Vestido", Price: 189.9, Category: "feminino"}
	require.NoError(t, products.Create(ctx, vestido))
	bone := &models.Product{Name: "Boné", Price: 49.9, Category: "acessorios"}
	require.NoError(t, products.Create(ctx, bone))

	id, err := service.AddProduct(ctx, "Ana@Example.com ", vestido.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	_, err = service.AddProduct(ctx, "ana@example.com", bone.ID)
	require.NoError(t, err)

	list, err := service.ListProducts(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Vestido", list[0].Name)
	assert.Equal(t, "Boné", list[1].Name)

	// Deleted products drop out of the joined list.
	require.NoError(t, products.Delete(ctx, bone.ID))
	list, err = service.ListProducts(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, vestido.ID, list[0].ID)
}

func TestWishlistService_ListRequiresEmail(t *testing.T) {
	service, _, _ := newWishlistFixture(t)
	_, err := service.ListProducts(context.Background(), " ")
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Equal(t, services.MsgEmailRequired, err.Error())
}

func TestWishlistService_AddErrors(t *testing.T) {
	ctx := context.Background()
	service, products, wishlist := newWishlistFixture(t)

	_, err := service.AddProduct(ctx, "", "1")
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = service.AddProduct(ctx, "ana@example.com", "404")
	assert.ErrorIs(t, err, services.ErrNotFound)

	p := &models.Product{Name: "Vestido", Price: 189.9}
	require.NoError(t, products.Create(ctx, p))
	_, err = service.AddProduct(ctx, "ana@example.com", p.ID)
	require.NoError(t, err)

	_, err = service.AddProduct(ctx, "ana@example.com", p.ID)
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Equal(t, services.MsgWishlistDuplicate, err.Error())

	entries, err := wishlist.ListByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWishlistService_Remove(t *testing.T) {
	ctx := context.Background()
	service, products, _ := newWishlistFixture(t)

	p := &models.Product{Name: "Vestido", Price: 189.9}
	require.NoError(t, products.Create(ctx, p))

	err := service.RemoveProduct(ctx, "ana@example.com", p.ID)
	assert.ErrorIs(t, err, services.ErrNotFound, "never added")

	_, err = service.AddProduct(ctx, "ana@example.com", p.ID)
	require.NoError(t, err)
	require.NoError(t, service.RemoveProduct(ctx, "ana@example.com", p.ID))
	assert.ErrorIs(t, service.RemoveProduct(ctx, "ana@example.com", p.ID), services.ErrNotFound)

	assert.ErrorIs(t, service.RemoveProduct(ctx, "ana@example.com", ""), services.ErrValidation)
}
