package document

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"mixmodas/internal/models"
	"mixmodas/internal/repositories"

	"github.com/google/uuid"
)

// cartNamespace seeds the deterministic document id of a cart line.
var cartNamespace = uuid.MustParse("8f1c6a52-3d1e-4b7a-9c55-0f6e1d2a7b90")

// CartStore implements repositories.CartRepository. Each line lives under an
// id derived from (email, product), so saving a line twice overwrites it.
type CartStore struct {
	backend Backend
}

// NewCartStore creates a cart store over backend.
func NewCartStore(backend Backend) *CartStore {
	return &CartStore{backend: backend}
}

func cartLineID(email, productID string) string {
	return uuid.NewSHA1(cartNamespace, []byte(email+"\x00"+productID)).String()
}

func (s *CartStore) ListLines(ctx context.Context, email string) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := s.backend.Scan(ctx, CartCollection, func(id string, decode DecodeFunc) error {
		var l models.CartLine
		if err := decode(&l); err != nil {
			return fmt.Errorf("failed to decode cart line %s: %w", id, err)
		}
		if l.UserEmail == email {
			lines = append(lines, l)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cart of %s: %w", email, err)
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].UpdatedAt.Before(lines[j].UpdatedAt)
	})
	return lines, nil
}

func (s *CartStore) GetLine(ctx context.Context, email, productID string) (*models.CartLine, error) {
	var l models.CartLine
	if err := s.backend.Get(ctx, CartCollection, cartLineID(email, productID), &l); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("product %s not in cart of %s: %w", productID, email, repositories.ErrNotFound)
		}
		return nil, err
	}
	return &l, nil
}

func (s *CartStore) SaveLine(ctx context.Context, line *models.CartLine) error {
	return s.backend.Set(ctx, CartCollection, cartLineID(line.UserEmail, line.ProductID), line)
}

func (s *CartStore) DeleteLine(ctx context.Context, email, productID string) (int64, error) {
	if _, err := s.GetLine(ctx, email, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if err := s.backend.Delete(ctx, CartCollection, cartLineID(email, productID)); err != nil {
		return 0, err
	}
	return 1, nil
}

func (s *CartStore) Clear(ctx context.Context, email string) error {
	lines, err := s.ListLines(ctx, email)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if err := s.backend.Delete(ctx, CartCollection, cartLineID(email, l.ProductID)); err != nil {
			return fmt.Errorf("failed to clear cart of %s: %w", email, err)
		}
	}
	return nil
}
