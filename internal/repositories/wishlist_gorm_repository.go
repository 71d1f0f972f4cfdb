package repositories

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"mixmodas/internal/models"

	"gorm.io/gorm"
)

type wishlistRecord struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserEmail string    `gorm:"column:usuario_email;size:255;not null;index;uniqueIndex:lista_desejos_email_produto_key"`
	ProductID string    `gorm:"column:produto_id;size:64;not null;uniqueIndex:lista_desejos_email_produto_key"`
	CreatedAt time.Time `gorm:"column:criado_em"`
}

func (wishlistRecord) TableName() string { return "lista_desejos" }

func (r *wishlistRecord) toModel() models.WishlistEntry {
	return models.WishlistEntry{
		ID:        strconv.FormatUint(r.ID, 10),
		UserEmail: r.UserEmail,
		ProductID: r.ProductID,
		CreatedAt: r.CreatedAt,
	}
}

// GORMWishlistRepository is a GORM implementation of WishlistRepository.
type GORMWishlistRepository struct {
	db *gorm.DB
}

// NewGORMWishlistRepository creates a new instance of GORMWishlistRepository.
func NewGORMWishlistRepository(db *gorm.DB) *GORMWishlistRepository {
	return &GORMWishlistRepository{db: db}
}

// Create inserts the entry; the composite unique index rejects a repeated pair.
func (r *GORMWishlistRepository) Create(ctx context.Context, entry *models.WishlistEntry) error {
	rec := &wishlistRecord{
		UserEmail: entry.UserEmail,
		ProductID: entry.ProductID,
		CreatedAt: entry.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product %s already in wishlist of %s: %w", entry.ProductID, entry.UserEmail, ErrDuplicate)
		}
		return fmt.Errorf("failed to create wishlist entry: %w", err)
	}
	*entry = rec.toModel()
	return nil
}

// Exists reports whether the pair is already stored.
func (r *GORMWishlistRepository) Exists(ctx context.Context, email, productID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&wishlistRecord{}).
		Where("usuario_email = ? AND produto_id = ?", email, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check wishlist entry: %w", err)
	}
	return count > 0, nil
}

// ListByEmail returns the user's entries in insertion order.
func (r *GORMWishlistRepository) ListByEmail(ctx context.Context, email string) ([]models.WishlistEntry, error) {
	var records []wishlistRecord
	if err := r.db.WithContext(ctx).Where("usuario_email = ?", email).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list wishlist of %s: %w", email, err)
	}
	entries := make([]models.WishlistEntry, 0, len(records))
	for i := range records {
		entries = append(entries, records[i].toModel())
	}
	return entries, nil
}

// Delete removes all entries for the pair.
func (r *GORMWishlistRepository) Delete(ctx context.Context, email, productID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("usuario_email = ? AND produto_id = ?", email, productID).
		Delete(&wishlistRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete wishlist entry: %w", res.Error)
	}
	return res.RowsAffected, nil
}
