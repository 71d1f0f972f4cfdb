package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"mixmodas/internal/models"
	"mixmodas/internal/repositories"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cast"
)

// ProductInput holds the raw submitted fields keyed by their wire name
// (nome, preco, categoria, tamanho, ...). A key that is present counts as
// supplied even when its value is empty.
type ProductInput map[string]interface{}

func (in ProductInput) has(key string) bool {
	_, ok := in[key]
	return ok
}

func (in ProductInput) str(key string) string {
	return strings.TrimSpace(cast.ToString(in[key]))
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts returns every product, or those of category when it is not
// empty. The result is never nil.
func (s *ProductService) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	products, err := s.repo.List(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, productErr(err, "failed to get product")
	}
	return product, nil
}

// CreateProduct validates in and stores a new product. Attributes outside the
// category's class are dropped; those inside it default to "".
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	name, price, err := nameAndPrice(in)
	if err != nil {
		return nil, err
	}

	category := in.str("categoria")
	if category == "" {
		category = models.DefaultCategory
	}

	product := &models.Product{
		Name:        name,
		Description: cast.ToString(in["descricao"]),
		Price:       price,
		Quantity:    parseQuantity(in["quantidade"]),
		Category:    category,
	}
	if image := in.str("imagem"); image != "" {
		product.Image = &image
	}
	applyAttributes(product, in)
	product.NormalizeAttributes()

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// UpdateProduct applies in to the stored product. nome and preco are always
// required; every other field changes only when supplied. An empty imagem
// keeps the stored image.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	name, price, err := nameAndPrice(in)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, productErr(err, "failed to load product for update")
	}

	product.Name = name
	product.Price = price
	if in.has("descricao") {
		product.Description = cast.ToString(in["descricao"])
	}
	if in.has("quantidade") {
		product.Quantity = parseQuantity(in["quantidade"])
	}
	if category := in.str("categoria"); category != "" {
		product.SetCategory(category)
	}
	if image := in.str("imagem"); image != "" {
		product.Image = &image
	}
	applyAttributes(product, in)
	product.NormalizeAttributes()
	product.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, productErr(err, "failed to update product")
	}
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return productErr(err, "failed to delete product")
	}
	return nil
}

type productCSVRow struct {
	ID          string  `csv:"id"`
	Name        string  `csv:"nome"`
	Description string  `csv:"descricao"`
	Price       float64 `csv:"preco"`
	Quantity    int     `csv:"quantidade"`
	Category    string  `csv:"categoria"`
	Image       string  `csv:"imagem"`
	Size        string  `csv:"tamanho"`
	Color       string  `csv:"cor"`
	Composition string  `csv:"composicao"`
	Type        string  `csv:"tipo"`
	Material    string  `csv:"material"`
	AgeRange    string  `csv:"idade"`
	Gender      string  `csv:"genero"`
	CreatedAt   string  `csv:"criado_em"`
	UpdatedAt   string  `csv:"atualizado_em"`
}

// ExportCSV writes the whole catalog to w, one row per product.
func (s *ProductService) ExportCSV(ctx context.Context, w io.Writer) error {
	products, err := s.ListProducts(ctx, "")
	if err != nil {
		return err
	}
	rows := make([]*productCSVRow, 0, len(products))
	for i := range products {
		p := &products[i]
		rows = append(rows, &productCSVRow{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Quantity:    p.Quantity,
			Category:    p.Category,
			Image:       deref(p.Image),
			Size:        deref(p.Size),
			Color:       deref(p.Color),
			Composition: deref(p.Composition),
			Type:        deref(p.Type),
			Material:    deref(p.Material),
			AgeRange:    deref(p.AgeRange),
			Gender:      deref(p.Gender),
			CreatedAt:   p.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write products csv: %w", err)
	}
	return nil
}

func nameAndPrice(in ProductInput) (string, float64, error) {
	name := in.str("nome")
	price, ok := parsePrice(in["preco"])
	if name == "" || !ok {
		return "", 0, newError(ErrValidation, MsgNameAndPriceRequired)
	}
	return name, price, nil
}

// parsePrice accepts numbers and numeric strings, with either "." or "," as
// decimal separator. Only positive finite values are valid.
func parsePrice(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if s, ok := v.(string); ok {
		v = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	}
	price, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, false
	}
	return price, true
}

// parseQuantity never fails: unparseable or negative values become 0.
func parseQuantity(v interface{}) int {
	q, err := ParseInt(v)
	if err != nil || q < 0 {
		return 0
	}
	return q
}

// ParseInt reads an integer field sent as a number or a string. Strings are
// always base 10 and only their leading digits count, so "010" is 10, "5.5"
// is 5 and "0x10" is 0.
func ParseInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case string:
		return leadingInt(t)
	case float64:
		return floatToInt(t)
	case float32:
		return floatToInt(float64(t))
	}
	return cast.ToIntE(v)
}

func leadingInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, fmt.Errorf("no digits in %q", s)
	}
	return strconv.Atoi(s[:end])
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || f >= math.MaxInt || f < math.MinInt {
		return 0, fmt.Errorf("%v is out of int range", f)
	}
	return int(f), nil
}

func applyAttributes(p *models.Product, in ProductInput) {
	for _, name := range models.ClassOf(p.Category).Attributes() {
		if in.has(name) {
			p.SetAttribute(name, in.str(name))
		}
	}
}

func productErr(err error, op string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return newError(ErrNotFound, MsgProductNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
