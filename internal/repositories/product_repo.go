package repositories

import (
	"context"
	"errors"

	"mixmodas/internal/models"
)

var (
	// ErrNotFound is wrapped by every repository when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is wrapped when a unique key (user email, wishlist pair) is taken.
	ErrDuplicate = errors.New("duplicate record")
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// List returns all products, or only those whose category matches
	// (case-insensitively) when category is non-empty.
	List(ctx context.Context, category string) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

// ProductMirror is a write-only secondary target for product changes.
type ProductMirror interface {
	PutProduct(ctx context.Context, product *models.Product) error
	RemoveProduct(ctx context.Context, id string) error
}
