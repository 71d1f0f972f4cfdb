package repositories

import (
	"context"
	"fmt"
	"sync"

	"mixmodas/internal/models"
)

// MemoryCartRepository is an in-memory implementation of CartRepository.
// Lines keep insertion order.
type MemoryCartRepository struct {
	lines []models.CartLine
	mu    sync.RWMutex
}

// NewMemoryCartRepository creates a new instance of MemoryCartRepository.
func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{}
}

func (r *MemoryCartRepository) ListLines(_ context.Context, email string) ([]models.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var lines []models.CartLine
	for _, l := range r.lines {
		if l.UserEmail == email {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

func (r *MemoryCartRepository) GetLine(_ context.Context, email, productID string) (*models.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.lines {
		if l.UserEmail == email && l.ProductID == productID {
			line := l
			return &line, nil
		}
	}
	return nil, fmt.Errorf("product %s not in cart of %s: %w", productID, email, ErrNotFound)
}

func (r *MemoryCartRepository) SaveLine(_ context.Context, line *models.CartLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, l := range r.lines {
		if l.UserEmail == line.UserEmail && l.ProductID == line.ProductID {
			r.lines[i].Quantity = line.Quantity
			r.lines[i].UpdatedAt = line.UpdatedAt
			return nil
		}
	}
	r.lines = append(r.lines, *line)
	return nil
}

func (r *MemoryCartRepository) DeleteLine(_ context.Context, email, productID string) (int64, error) {
	return r.remove(func(l models.CartLine) bool {
		return l.UserEmail == email && l.ProductID == productID
	}), nil
}

func (r *MemoryCartRepository) Clear(_ context.Context, email string) error {
	r.remove(func(l models.CartLine) bool { return l.UserEmail == email })
	return nil
}

func (r *MemoryCartRepository) remove(match func(models.CartLine) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.lines[:0]
	var removed int64
	for _, l := range r.lines {
		if match(l) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	r.lines = kept
	return removed
}
