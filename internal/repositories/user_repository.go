package repositories

import (
	"context"

	"mixmodas/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// UserMirror is a write-only secondary target for user changes. Implementations
// must not persist the password hash.
type UserMirror interface {
	PutUser(ctx context.Context, user *models.User) error
}
