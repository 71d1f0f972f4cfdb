package repositories_test

import (
	"context"
	"fmt"
	"testing"

	"mixmodas/internal/models"
	"mixmodas/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB returns a private in-memory SQLite database with the schema
// migrated.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func TestGORMProductRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(openTestDB(t))

	p := &models.Product{Name: "Camiseta", Price: 39.9, Category: "masculino", Size: strPtr("M"), Color: strPtr("Azul"), Composition: strPtr("")}
	require.NoError(t, repo.Create(ctx, p))
	assert.Equal(t, "1", p.ID)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Camiseta", got.Name)
	assert.Equal(t, 39.9, got.Price)
	require.NotNil(t, got.Size)
	assert.Equal(t, "M", *got.Size)
	assert.Nil(t, got.AgeRange)

	got.Category = "infantil"
	got.Size, got.Color, got.Composition = nil, nil, nil
	got.AgeRange, got.Gender = strPtr("3-6 anos"), strPtr("")
	require.NoError(t, repo.Update(ctx, got))

	updated, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.Size, "cleared attributes must be written as NULL")
	assert.Nil(t, updated.Color)
	require.NotNil(t, updated.AgeRange)
	assert.Equal(t, "3-6 anos", *updated.AgeRange)

	require.NoError(t, repo.Delete(ctx, p.ID))
	err = repo.Delete(ctx, p.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMProductRepository_ListFiltersCaseInsensitively(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(openTestDB(t))

	for _, c := range []string{"masculino", "Masculino", "infantil"} {
		require.NoError(t, repo.Create(ctx, &models.Product{Name: "p-" + c, Price: 1, Category: c}))
	}

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	male, err := repo.List(ctx, "MASCULINO")
	require.NoError(t, err)
	assert.Len(t, male, 2)

	none, err := repo.List(ctx, "acessorios")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGORMProductRepository_NonNumericIDIsNotFound(t *testing.T) {
	repo := repositories.NewGORMProductRepository(openTestDB(t))
	_, err := repo.GetByID(context.Background(), "abc")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(openTestDB(t))

	u := &models.User{Email: "ana@example.com", Name: "Ana", PasswordHash: "hash", Role: models.RoleUser}
	require.NoError(t, repo.Create(ctx, u))

	err := repo.Create(ctx, &models.User{Email: "ana@example.com", Name: "Outra"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	got, err := repo.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, "hash", got.PasswordHash)

	got.Role = models.RoleAdmin
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMWishlistRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMWishlistRepository(openTestDB(t))

	e := &models.WishlistEntry{UserEmail: "ana@example.com", ProductID: "7"}
	require.NoError(t, repo.Create(ctx, e))
	assert.NotEmpty(t, e.ID)

	err := repo.Create(ctx, &models.WishlistEntry{UserEmail: "ana@example.com", ProductID: "7"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	exists, err := repo.Exists(ctx, "ana@example.com", "7")
	require.NoError(t, err)
	assert.True(t, exists)

	entries, err := repo.ListByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	n, err := repo.Delete(ctx, "ana@example.com", "7")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Delete(ctx, "ana@example.com", "7")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
