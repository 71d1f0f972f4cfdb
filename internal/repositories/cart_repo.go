package repositories

import (
	"context"

	"mixmodas/internal/models"
)

// CartRepository stores server-side cart lines keyed by user email and product.
type CartRepository interface {
	ListLines(ctx context.Context, email string) ([]models.CartLine, error)
	GetLine(ctx context.Context, email, productID string) (*models.CartLine, error)
	// SaveLine inserts the line or replaces the quantity of an existing one.
	SaveLine(ctx context.Context, line *models.CartLine) error
	DeleteLine(ctx context.Context, email, productID string) (int64, error)
	Clear(ctx context.Context, email string) error
}
