package document

import (
	"context"
	"fmt"
	"sort"

	"mixmodas/internal/models"
	"mixmodas/internal/repositories"

	"github.com/google/uuid"
)

// WishlistStore implements repositories.WishlistRepository. Documents have
// opaque ids; pair uniqueness is checked before insert.
type WishlistStore struct {
	backend Backend
}

// NewWishlistStore creates a wishlist store over backend.
func NewWishlistStore(backend Backend) *WishlistStore {
	return &WishlistStore{backend: backend}
}

func (s *WishlistStore) Create(ctx context.Context, entry *models.WishlistEntry) error {
	exists, err := s.Exists(ctx, entry.UserEmail, entry.ProductID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("product %s already in wishlist of %s: %w", entry.ProductID, entry.UserEmail, repositories.ErrDuplicate)
	}
	entry.ID = uuid.NewString()
	return s.backend.Set(ctx, WishlistCollection, entry.ID, entry)
}

func (s *WishlistStore) Exists(ctx context.Context, email, productID string) (bool, error) {
	ids, err := s.matching(ctx, email, productID)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

func (s *WishlistStore) ListByEmail(ctx context.Context, email string) ([]models.WishlistEntry, error) {
	var entries []models.WishlistEntry
	err := s.backend.Scan(ctx, WishlistCollection, func(id string, decode DecodeFunc) error {
		var e models.WishlistEntry
		if err := decode(&e); err != nil {
			return fmt.Errorf("failed to decode wishlist entry %s: %w", id, err)
		}
		if e.UserEmail == email {
			e.ID = id
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist of %s: %w", email, err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

func (s *WishlistStore) Delete(ctx context.Context, email, productID string) (int64, error) {
	ids, err := s.matching(ctx, email, productID)
	if err != nil {
		return 0, err
	}
	var removed int64
	for _, id := range ids {
		if err := s.backend.Delete(ctx, WishlistCollection, id); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *WishlistStore) matching(ctx context.Context, email, productID string) ([]string, error) {
	var ids []string
	err := s.backend.Scan(ctx, WishlistCollection, func(id string, decode DecodeFunc) error {
		var e models.WishlistEntry
		if err := decode(&e); err != nil {
			return fmt.Errorf("failed to decode wishlist entry %s: %w", id, err)
		}
		if e.UserEmail == email && e.ProductID == productID {
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query wishlist: %w", err)
	}
	return ids, nil
}
