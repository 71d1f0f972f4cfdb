package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mixmodas/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRecord struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserEmail string    `gorm:"column:usuario_email;size:255;not null;index;uniqueIndex:carrinho_email_produto_key"`
	ProductID string    `gorm:"column:produto_id;size:64;not null;uniqueIndex:carrinho_email_produto_key"`
	Quantity  int       `gorm:"column:quantidade;not null"`
	UpdatedAt time.Time `gorm:"column:atualizado_em"`
}

func (cartRecord) TableName() string { return "carrinho" }

func (r *cartRecord) toModel() models.CartLine {
	return models.CartLine{
		UserEmail: r.UserEmail,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		UpdatedAt: r.UpdatedAt,
	}
}

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func (r *GORMCartRepository) ListLines(ctx context.Context, email string) ([]models.CartLine, error) {
	var records []cartRecord
	if err := r.db.WithContext(ctx).Where("usuario_email = ?", email).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list cart of %s: %w", email, err)
	}
	lines := make([]models.CartLine, 0, len(records))
	for i := range records {
		lines = append(lines, records[i].toModel())
	}
	return lines, nil
}

func (r *GORMCartRepository) GetLine(ctx context.Context, email, productID string) (*models.CartLine, error) {
	var rec cartRecord
	err := r.db.WithContext(ctx).
		Where("usuario_email = ? AND produto_id = ?", email, productID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s not in cart of %s: %w", productID, email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart line: %w", err)
	}
	line := rec.toModel()
	return &line, nil
}

// SaveLine upserts on the (usuario_email, produto_id) key so concurrent adds
// never produce two rows for the same product.
func (r *GORMCartRepository) SaveLine(ctx context.Context, line *models.CartLine) error {
	rec := &cartRecord{
		UserEmail: line.UserEmail,
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		UpdatedAt: line.UpdatedAt,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "usuario_email"}, {Name: "produto_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantidade", "atualizado_em"}),
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("failed to save cart line: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) DeleteLine(ctx context.Context, email, productID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("usuario_email = ? AND produto_id = ?", email, productID).
		Delete(&cartRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete cart line: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GORMCartRepository) Clear(ctx context.Context, email string) error {
	if err := r.db.WithContext(ctx).Where("usuario_email = ?", email).Delete(&cartRecord{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart of %s: %w", email, err)
	}
	return nil
}
