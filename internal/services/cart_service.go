package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"mixmodas/internal/models"
	"mixmodas/internal/repositories"

	"go.uber.org/zap"
)

// CartService owns the server-side cart of each signed-in user. Lines store
// only product and quantity; prices are read from the catalog every time the
// cart is priced.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository

	// serializes read-modify-write of quantities within this process
	mu sync.Mutex
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart prices email's cart with current catalog data. Lines whose product
// was deleted are skipped.
func (s *CartService) GetCart(ctx context.Context, email string) (*models.Cart, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, newError(ErrValidation, MsgEmailRequired)
	}

	lines, err := s.cartRepo.ListLines(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}

	cart := &models.Cart{UserEmail: email, Items: make([]models.CartItem, 0, len(lines))}
	for _, line := range lines {
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if errors.Is(err, repositories.ErrNotFound) {
			zap.L().Debug("skipping cart line of deleted product",
				zap.String("email", email), zap.String("produto_id", line.ProductID))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load cart product %s: %w", line.ProductID, err)
		}
		item := models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Price:     product.Price,
			Quantity:  line.Quantity,
			Subtotal:  roundCents(product.Price * float64(line.Quantity)),
		}
		cart.Items = append(cart.Items, item)
		cart.Total += item.Subtotal
	}
	cart.Total = roundCents(cart.Total)
	return cart, nil
}

// AddItem adds quantity units of productID on top of what is already in the cart.
func (s *CartService) AddItem(ctx context.Context, email, productID string, quantity int) (*models.Cart, error) {
	email, productID, err := cartKey(email, productID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, newError(ErrValidation, MsgInvalidQuantity)
	}

	s.mu.Lock()
	current := 0
	line, err := s.cartRepo.GetLine(ctx, email, productID)
	switch {
	case err == nil:
		current = line.Quantity
	case !errors.Is(err, repositories.ErrNotFound):
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to read cart line: %w", err)
	}
	if current > math.MaxInt-quantity {
		s.mu.Unlock()
		return nil, newError(ErrValidation, MsgInvalidQuantity)
	}
	err = s.store(ctx, email, productID, current+quantity)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, email)
}

// SetQuantity replaces the quantity of a line. Zero or less removes it.
func (s *CartService) SetQuantity(ctx context.Context, email, productID string, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, email, productID)
	}
	email, productID, err := cartKey(email, productID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if _, err := s.cartRepo.GetLine(ctx, email, productID); err != nil {
		s.mu.Unlock()
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, MsgCartItemNotFound)
		}
		return nil, fmt.Errorf("failed to read cart line: %w", err)
	}
	err = s.store(ctx, email, productID, quantity)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, email)
}

// RemoveItem drops productID from the cart.
func (s *CartService) RemoveItem(ctx context.Context, email, productID string) (*models.Cart, error) {
	email, productID, err := cartKey(email, productID)
	if err != nil {
		return nil, err
	}
	removed, err := s.cartRepo.DeleteLine(ctx, email, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove cart line: %w", err)
	}
	if removed == 0 {
		return nil, newError(ErrNotFound, MsgCartItemNotFound)
	}
	return s.GetCart(ctx, email)
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return newError(ErrValidation, MsgEmailRequired)
	}
	if err := s.cartRepo.Clear(ctx, email); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// store checks stock and writes the line. Caller holds s.mu.
func (s *CartService) store(ctx context.Context, email, productID string, quantity int) error {
	if quantity <= 0 {
		return newError(ErrValidation, MsgInvalidQuantity)
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return productErr(err, "failed to check cart product")
	}
	if product.Quantity < quantity {
		return newError(ErrValidation, fmt.Sprintf("Estoque insuficiente para %s (disponível: %d)", product.Name, product.Quantity))
	}

	line := &models.CartLine{
		UserEmail: email,
		ProductID: productID,
		Quantity:  quantity,
		UpdatedAt: time.Now(),
	}
	if err := s.cartRepo.SaveLine(ctx, line); err != nil {
		return fmt.Errorf("failed to save cart line: %w", err)
	}
	return nil
}

func cartKey(email, productID string) (string, string, error) {
	email = normalizeEmail(email)
	productID = strings.TrimSpace(productID)
	if email == "" {
		return "", "", newError(ErrValidation, MsgEmailRequired)
	}
	if productID == "" {
		return "", "", newError(ErrValidation, MsgProductIDRequired)
	}
	return email, productID, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
