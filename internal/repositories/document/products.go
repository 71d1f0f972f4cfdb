package document

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"mixmodas/internal/models"

	"github.com/google/uuid"
)

// ProductStore implements repositories.ProductRepository and
// repositories.ProductMirror on a document backend.
type ProductStore struct {
	backend Backend
}

// NewProductStore creates a product store over backend.
func NewProductStore(backend Backend) *ProductStore {
	return &ProductStore{backend: backend}
}

// List scans the collection; the category filter is applied in process so it
// stays case-insensitive on every backend.
func (s *ProductStore) List(ctx context.Context, category string) ([]models.Product, error) {
	products := make([]models.Product, 0)
	err := s.backend.Scan(ctx, ProductsCollection, func(id string, decode DecodeFunc) error {
		var p models.Product
		if err := decode(&p); err != nil {
			return fmt.Errorf("failed to decode product %s: %w", id, err)
		}
		if category != "" && !strings.EqualFold(p.Category, category) {
			return nil
		}
		p.ID = id
		products = append(products, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})
	return products, nil
}

func (s *ProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := s.backend.Get(ctx, ProductsCollection, id, &p); err != nil {
		return nil, err
	}
	p.ID = id
	return &p, nil
}

// Create stores a new product under a fresh opaque id.
func (s *ProductStore) Create(ctx context.Context, product *models.Product) error {
	product.ID = uuid.NewString()
	return s.backend.Set(ctx, ProductsCollection, product.ID, product)
}

func (s *ProductStore) Update(ctx context.Context, product *models.Product) error {
	existing, err := s.GetByID(ctx, product.ID)
	if err != nil {
		return err
	}
	product.CreatedAt = existing.CreatedAt
	return s.backend.Set(ctx, ProductsCollection, product.ID, product)
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.backend.Delete(ctx, ProductsCollection, id)
}

// PutProduct writes product under the id assigned by the primary store.
func (s *ProductStore) PutProduct(ctx context.Context, product *models.Product) error {
	return s.backend.Set(ctx, ProductsCollection, product.ID, product)
}

// RemoveProduct deletes the mirrored copy; a missing document is not an error.
func (s *ProductStore) RemoveProduct(ctx context.Context, id string) error {
	return s.backend.Delete(ctx, ProductsCollection, id)
}
