package repositories

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"mixmodas/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// It also satisfies ProductMirror so it can stand in for a secondary store.
type MemoryProductRepository struct {
	products map[string]models.Product
	nextID   uint64
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// List returns all products ordered by id, optionally filtered by category.
func (r *MemoryProductRepository) List(_ context.Context, category string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		productList = append(productList, p)
	}
	sort.Slice(productList, func(i, j int) bool {
		return idLess(productList[i].ID, productList[j].ID)
	})
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s not found: %w", id, ErrNotFound)
	}
	return &product, nil
}

// Create adds a new product with the next sequential id.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	product.ID = strconv.FormatUint(r.nextID, 10)
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s not found for update: %w", product.ID, ErrNotFound)
	}
	updated := *product
	updated.CreatedAt = existing.CreatedAt
	r.products[product.ID] = updated
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

// PutProduct stores product under its existing id.
func (r *MemoryProductRepository) PutProduct(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[product.ID] = *product
	return nil
}

// RemoveProduct deletes id if present.
func (r *MemoryProductRepository) RemoveProduct(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.products, id)
	return nil
}

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user keyed by email.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; ok {
		return fmt.Errorf("email '%s' already registered: %w", user.Email, ErrDuplicate)
	}
	r.users[user.Email] = *user
	return nil
}

// GetByEmail returns a user by email.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[email]
	if !ok {
		return nil, fmt.Errorf("user with email %s not found: %w", email, ErrNotFound)
	}
	return &user, nil
}

// List returns every user ordered by email.
func (r *MemoryUserRepository) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

// Update replaces an existing user.
func (r *MemoryUserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.Email]
	if !ok {
		return fmt.Errorf("user with email %s not found for update: %w", user.Email, ErrNotFound)
	}
	updated := *user
	updated.CreatedAt = existing.CreatedAt
	r.users[user.Email] = updated
	return nil
}

// PutUser stores user without its password hash.
func (r *MemoryUserRepository) PutUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mirrored := *user
	mirrored.PasswordHash = ""
	r.users[user.Email] = mirrored
	return nil
}

// MemoryWishlistRepository is an in-memory implementation of WishlistRepository.
type MemoryWishlistRepository struct {
	entries []models.WishlistEntry
	nextID  uint64
	mu      sync.RWMutex
}

// NewMemoryWishlistRepository creates a new instance of MemoryWishlistRepository.
func NewMemoryWishlistRepository() *MemoryWishlistRepository {
	return &MemoryWishlistRepository{}
}

// Create appends the entry unless the pair already exists.
func (r *MemoryWishlistRepository) Create(_ context.Context, entry *models.WishlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.UserEmail == entry.UserEmail && e.ProductID == entry.ProductID {
			return fmt.Errorf("product %s already in wishlist of %s: %w", entry.ProductID, entry.UserEmail, ErrDuplicate)
		}
	}
	r.nextID++
	entry.ID = strconv.FormatUint(r.nextID, 10)
	r.entries = append(r.entries, *entry)
	return nil
}

// Exists reports whether the pair is stored.
func (r *MemoryWishlistRepository) Exists(_ context.Context, email, productID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.UserEmail == email && e.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

// ListByEmail returns the user's entries in insertion order.
func (r *MemoryWishlistRepository) ListByEmail(_ context.Context, email string) ([]models.WishlistEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []models.WishlistEntry
	for _, e := range r.entries {
		if e.UserEmail == email {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Delete removes all entries for the pair.
func (r *MemoryWishlistRepository) Delete(_ context.Context, email, productID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]
	var removed int64
	for _, e := range r.entries {
		if e.UserEmail == email && e.ProductID == productID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return removed, nil
}

// idLess orders numeric ids numerically and everything else lexically.
func idLess(a, b string) bool {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
