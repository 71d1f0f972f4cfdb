package services_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"mixmodas/internal/models"
	"mixmodas/internal/repositories"
	"mixmodas/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, category string) ([]models.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func str(s string) *string { return &s }

func TestProductService_ListProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	expectedProducts := []models.Product{
		{ID: "1", Name: "Camiseta", Price: 39.9, Category: "masculino"},
		{ID: "2", Name: "Vestido", Price: 189.9, Category: "feminino"},
	}

	mockRepo.On("List", ctx, "").Return(expectedProducts, nil).Once()
	products, err := service.ListProducts(ctx, "")
	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)

	// The filter is trimmed and an empty result is an empty slice, not nil.
	mockRepo.On("List", ctx, "infantil").Return(nil, nil).Once()
	products, err = service.ListProducts(ctx, "  infantil ")
	assert.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	expectedProduct := &models.Product{ID: "1", Name: "Camiseta", Price: 39.9}

	mockRepo.On("GetByID", ctx, "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProduct(ctx, "1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	mockRepo.On("GetByID", ctx, "99").Return(nil, fmt.Errorf("product with ID 99 not found: %w", repositories.ErrNotFound)).Once()
	product, err = service.GetProduct(ctx, "99")
	assert.Nil(t, product)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Equal(t, services.MsgProductNotFound, err.Error())
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	product, err := service.CreateProduct(ctx, services.ProductInput{
		"nome":       "  Camiseta ",
		"preco":      "39.90",
		"quantidade": "12",
		"categoria":  "masculino",
		"tamanho":    "M",
		"cor":        "Azul",
		"idade":      "2-4 anos", // not a clothing attribute
	})
	require.NoError(t, err)
	assert.Equal(t, "Camiseta", product.Name)
	assert.Equal(t, 39.9, product.Price)
	assert.Equal(t, 12, product.Quantity)
	assert.Equal(t, str("M"), product.Size)
	assert.Equal(t, str("Azul"), product.Color)
	assert.Equal(t, str(""), product.Composition)
	assert.Nil(t, product.AgeRange)
	assert.Nil(t, product.Image)
	assert.False(t, product.CreatedAt.IsZero())
	assert.Equal(t, product.CreatedAt, product.UpdatedAt)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_Defaults(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	product, err := service.CreateProduct(ctx, services.ProductInput{
		"nome":       "Chaveiro",
		"preco":      12.5,
		"quantidade": "-3",
		"imagem":     "/uploads/1.png",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategory, product.Category)
	assert.Equal(t, 0, product.Quantity)
	assert.Equal(t, "", product.Description)
	assert.Equal(t, str("/uploads/1.png"), product.Image)
	for _, name := range models.AttributeNames {
		_, ok := product.Attribute(name)
		assert.False(t, ok, name)
	}
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_Validation(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	cases := map[string]services.ProductInput{
		"missing name":   {"preco": "10"},
		"blank name":     {"nome": "   ", "preco": "10"},
		"missing price":  {"nome": "Camiseta"},
		"zero price":     {"nome": "Camiseta", "preco": 0},
		"negative price": {"nome": "Camiseta", "preco": "-5"},
		"text price":     {"nome": "Camiseta", "preco": "abc"},
		"infinite price": {"nome": "Camiseta", "preco": "Inf"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			product, err := service.CreateProduct(ctx, in)
			assert.Nil(t, product)
			assert.ErrorIs(t, err, services.ErrValidation)
			assert.Equal(t, services.MsgNameAndPriceRequired, err.Error())
		})
	}
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_CreateProduct_CommaDecimal(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()
	product, err := service.CreateProduct(ctx, services.ProductInput{"nome": "Boné", "preco": "49,90"})
	require.NoError(t, err)
	assert.Equal(t, 49.9, product.Price)
}

func TestProductService_CreateProduct_QuantityIsDecimal(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(nil)

	cases := []struct {
		in   interface{}
		want int
	}{
		{"010", 10},
		{" 7 ", 7},
		{"5.5", 5},
		{"3,9", 3},
		{"0x10", 0},
		{"12abc", 12},
		{"abc", 0},
		{"-4", 0},
		{"", 0},
		{8.9, 8},
		{6, 6},
		{nil, 0},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.in), func(t *testing.T) {
			product, err := service.CreateProduct(ctx, services.ProductInput{"nome": "Meia", "preco": "9.90", "quantidade": tc.in})
			require.NoError(t, err)
			assert.Equal(t, tc.want, product.Quantity)
		})
	}
}

func TestParseInt(t *testing.T) {
	n, err := services.ParseInt("0010")
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	n, err = services.ParseInt("+2")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, bad := range []interface{}{"muitos", "-", ".5", "99999999999999999999", 1e30} {
		_, err := services.ParseInt(bad)
		assert.Error(t, err, "%v", bad)
	}
}

func TestProductService_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	stored := &models.Product{
		ID: "1", Name: "Camiseta", Description: "Algodão", Price: 39.9, Quantity: 5,
		Category: "masculino", Image: str("/uploads/old.png"),
		Size: str("M"), Color: str("Azul"), Composition: str(""),
	}
	mockRepo.On("GetByID", ctx, "1").Return(stored, nil).Once()
	mockRepo.On("Update", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	product, err := service.UpdateProduct(ctx, "1", services.ProductInput{
		"nome":      "Camiseta Infantil",
		"preco":     "29.90",
		"categoria": "infantil",
		"idade":     "4 anos",
		"imagem":    "",
	})
	require.NoError(t, err)
	assert.Equal(t, "Camiseta Infantil", product.Name)
	assert.Equal(t, 29.9, product.Price)
	assert.Equal(t, "Algodão", product.Description, "unsupplied fields are kept")
	assert.Equal(t, 5, product.Quantity)
	assert.Equal(t, str("/uploads/old.png"), product.Image, "empty imagem keeps the stored path")
	assert.Nil(t, product.Size)
	assert.Nil(t, product.Color)
	assert.Nil(t, product.Composition)
	assert.Equal(t, str("4 anos"), product.AgeRange)
	assert.Equal(t, str(""), product.Gender)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_Errors(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	_, err := service.UpdateProduct(ctx, "1", services.ProductInput{"nome": "Sem preço"})
	assert.ErrorIs(t, err, services.ErrValidation)
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)

	mockRepo.On("GetByID", ctx, "99").Return(nil, fmt.Errorf("product with ID 99 not found: %w", repositories.ErrNotFound)).Once()
	_, err = service.UpdateProduct(ctx, "99", services.ProductInput{"nome": "X", "preco": 1})
	assert.ErrorIs(t, err, services.ErrNotFound)

	mockRepo.On("GetByID", ctx, "2").Return(&models.Product{ID: "2", Name: "Y", Price: 2}, nil).Once()
	mockRepo.On("Update", ctx, mock.AnythingOfType("*models.Product")).Return(errors.New("database error")).Once()
	_, err = service.UpdateProduct(ctx, "2", services.ProductInput{"nome": "Y", "preco": 3})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	assert.False(t, errors.Is(err, services.ErrNotFound))
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("Delete", ctx, "1").Return(nil).Once()
	assert.NoError(t, service.DeleteProduct(ctx, "1"))

	mockRepo.On("Delete", ctx, "99").Return(fmt.Errorf("product with ID 99 not found: %w", repositories.ErrNotFound)).Once()
	err := service.DeleteProduct(ctx, "99")
	assert.ErrorIs(t, err, services.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ExportCSV(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("List", ctx, "").Return([]models.Product{
		{ID: "1", Name: "Camiseta", Price: 39.9, Category: "masculino", Size: str("M")},
		{ID: "2", Name: "Óculos", Price: 79.9, Category: "acessorios", Material: str("Acetato")},
	}, nil).Once()

	var buf bytes.Buffer
	require.NoError(t, service.ExportCSV(ctx, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id,nome,descricao,preco,quantidade,categoria"))
	assert.Contains(t, lines[1], "Camiseta")
	assert.Contains(t, lines[1], ",M,")
	assert.Contains(t, lines[2], "Acetato")
	mockRepo.AssertExpectations(t)
}
