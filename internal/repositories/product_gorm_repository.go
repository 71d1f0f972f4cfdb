package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"mixmodas/internal/models"

	"gorm.io/gorm"
)

// productRecord is the relational row for a product. The id is assigned by
// the database sequence.
type productRecord struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"column:nome;not null"`
	Description string    `gorm:"column:descricao"`
	Price       float64   `gorm:"column:preco;not null"`
	Quantity    int       `gorm:"column:quantidade"`
	Category    string    `gorm:"column:categoria;index"`
	Image       *string   `gorm:"column:imagem;size:1024"`
	Size        *string   `gorm:"column:tamanho"`
	Color       *string   `gorm:"column:cor"`
	Composition *string   `gorm:"column:composicao"`
	Type        *string   `gorm:"column:tipo"`
	Material    *string   `gorm:"column:material"`
	AgeRange    *string   `gorm:"column:idade"`
	Gender      *string   `gorm:"column:genero"`
	CreatedAt   time.Time `gorm:"column:criado_em"`
	UpdatedAt   time.Time `gorm:"column:atualizado_em"`
}

func (productRecord) TableName() string { return "produtos" }

func productToRecord(p *models.Product) (*productRecord, error) {
	rec := &productRecord{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Category:    p.Category,
		Image:       p.Image,
		Size:        p.Size,
		Color:       p.Color,
		Composition: p.Composition,
		Type:        p.Type,
		Material:    p.Material,
		AgeRange:    p.AgeRange,
		Gender:      p.Gender,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.ID != "" {
		id, err := parseRecordID(p.ID)
		if err != nil {
			return nil, err
		}
		rec.ID = id
	}
	return rec, nil
}

func (r *productRecord) toModel() models.Product {
	return models.Product{
		ID:          strconv.FormatUint(r.ID, 10),
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Category:    r.Category,
		Image:       r.Image,
		Size:        r.Size,
		Color:       r.Color,
		Composition: r.Composition,
		Type:        r.Type,
		Material:    r.Material,
		AgeRange:    r.AgeRange,
		Gender:      r.Gender,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// parseRecordID converts an API id into a row id. Ids that are not numeric
// cannot exist in the relational store.
func parseRecordID(id string) (uint64, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("product with ID %s not found: %w", id, ErrNotFound)
	}
	return n, nil
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// List retrieves products from the database, optionally filtered by category.
func (r *GORMProductRepository) List(ctx context.Context, category string) ([]models.Product, error) {
	var records []productRecord
	q := r.db.WithContext(ctx).Order("id")
	if category != "" {
		q = q.Where("LOWER(categoria) = LOWER(?)", category)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products := make([]models.Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].toModel())
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	rowID, err := parseRecordID(id)
	if err != nil {
		return nil, err
	}
	var rec productRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", rowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	p := rec.toModel()
	return &p, nil
}

// Create inserts a new product and writes the assigned id back into product.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	product.ID = ""
	rec, err := productToRecord(product)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	*product = rec.toModel()
	return nil
}

// Update overwrites every column of an existing product, including nulls, so
// cleared category attributes are removed from the row.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	rec, err := productToRecord(product)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&productRecord{ID: rec.ID}).
		Select("*").Omit("id", "criado_em").
		Updates(rec)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for update: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	rowID, err := parseRecordID(id)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Delete(&productRecord{}, "id = ?", rowID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}
