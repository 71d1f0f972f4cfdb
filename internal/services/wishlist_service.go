package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mixmodas/internal/models"
	"mixmodas/internal/repositories"

	"go.uber.org/zap"
)

// WishlistService handles the per-user wishlist.
type WishlistService struct {
	wishlistRepo repositories.WishlistRepository
	productRepo  repositories.ProductRepository
}

// NewWishlistService creates a new WishlistService.
func NewWishlistService(wishlistRepo repositories.WishlistRepository, productRepo repositories.ProductRepository) *WishlistService {
	return &WishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

// ListProducts returns the products on email's wishlist in insertion order.
// Entries whose product has since been deleted are skipped.
func (s *WishlistService) ListProducts(ctx context.Context, email string) ([]models.Product, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, newError(ErrValidation, MsgEmailRequired)
	}

	entries, err := s.wishlistRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}

	products := make([]models.Product, 0, len(entries))
	for _, entry := range entries {
		product, err := s.productRepo.GetByID(ctx, entry.ProductID)
		if errors.Is(err, repositories.ErrNotFound) {
			zap.L().Debug("skipping wishlist entry of deleted product",
				zap.String("email", email), zap.String("produto_id", entry.ProductID))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load wishlist product %s: %w", entry.ProductID, err)
		}
		products = append(products, *product)
	}
	return products, nil
}

// AddProduct puts productID on email's wishlist and returns the entry id.
func (s *WishlistService) AddProduct(ctx context.Context, email, productID string) (string, error) {
	email = normalizeEmail(email)
	productID = strings.TrimSpace(productID)
	if email == "" || productID == "" {
		return "", newError(ErrValidation, MsgAllFieldsRequired)
	}

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return "", productErr(err, "failed to check wishlist product")
	}

	exists, err := s.wishlistRepo.Exists(ctx, email, productID)
	if err != nil {
		return "", fmt.Errorf("failed to check wishlist: %w", err)
	}
	if exists {
		return "", newError(ErrConflict, MsgWishlistDuplicate)
	}

	entry := &models.WishlistEntry{
		UserEmail: email,
		ProductID: productID,
		CreatedAt: time.Now(),
	}
	if err := s.wishlistRepo.Create(ctx, entry); err != nil {
		// Lost a race against a concurrent insert of the same pair.
		if errors.Is(err, repositories.ErrDuplicate) {
			return "", newError(ErrConflict, MsgWishlistDuplicate)
		}
		return "", fmt.Errorf("failed to add to wishlist: %w", err)
	}
	return entry.ID, nil
}

// RemoveProduct removes every entry for the pair.
func (s *WishlistService) RemoveProduct(ctx context.Context, email, productID string) error {
	email = normalizeEmail(email)
	productID = strings.TrimSpace(productID)
	if email == "" || productID == "" {
		return newError(ErrValidation, MsgAllFieldsRequired)
	}

	removed, err := s.wishlistRepo.Delete(ctx, email, productID)
	if err != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	if removed == 0 {
		return newError(ErrNotFound, MsgWishlistNotFound)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
