package repositories

import (
	"context"

	"mixmodas/internal/models"
)

// WishlistRepository defines the interface for wishlist data access.
type WishlistRepository interface {
	Create(ctx context.Context, entry *models.WishlistEntry) error
	Exists(ctx context.Context, email, productID string) (bool, error)
	ListByEmail(ctx context.Context, email string) ([]models.WishlistEntry, error)
	// Delete removes every entry for the pair and reports how many were removed.
	Delete(ctx context.Context, email, productID string) (int64, error)
}
