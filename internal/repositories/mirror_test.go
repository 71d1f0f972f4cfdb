package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"mixmodas/internal/models"
	"mixmodas/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductMirror is a mock implementation of repositories.ProductMirror
type MockProductMirror struct {
	mock.Mock
}

func (m *MockProductMirror) PutProduct(ctx context.Context, product *models.Product) error {
	args := m.Called(product.ID)
	return args.Error(0)
}

func (m *MockProductMirror) RemoveProduct(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func newMirror(t *testing.T) *repositories.Mirror {
	t.Helper()
	m, err := repositories.NewMirror(2, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { m.Release(time.Second) })
	return m
}

func TestMirroredProductRepository_CopiesWrites(t *testing.T) {
	ctx := context.Background()
	primary := repositories.NewMemoryProductRepository()
	secondary := repositories.NewMemoryProductRepository()
	repo := repositories.NewMirroredProductRepository(primary, newMirror(t),
		repositories.NamedProductMirror{Name: "memory", Target: secondary})

	p := &models.Product{Name: "Vestido", Price: 189.9, Category: "feminino"}
	require.NoError(t, repo.Create(ctx, p))

	assert.Eventually(t, func() bool {
		_, err := secondary.GetByID(ctx, p.ID)
		return err == nil
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.Eventually(t, func() bool {
		_, err := secondary.GetByID(ctx, p.ID)
		return errors.Is(err, repositories.ErrNotFound)
	}, time.Second, 10*time.Millisecond)
}

func TestMirroredProductRepository_SecondaryFailureDoesNotFailPrimary(t *testing.T) {
	ctx := context.Background()
	primary := repositories.NewMemoryProductRepository()
	failing := new(MockProductMirror)
	called := make(chan struct{})
	failing.On("PutProduct", "1").Return(errors.New("firestore unavailable")).Once().
		Run(func(mock.Arguments) { close(called) })

	repo := repositories.NewMirroredProductRepository(primary, newMirror(t),
		repositories.NamedProductMirror{Name: "failing", Target: failing})

	p := &models.Product{Name: "Bolsa", Price: 129.9, Category: "acessorios"}
	require.NoError(t, repo.Create(ctx, p))

	stored, err := primary.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bolsa", stored.Name)

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("mirror write was not attempted")
	}
	failing.AssertExpectations(t)
}

func TestMirroredProductRepository_PrimaryFailureSkipsMirror(t *testing.T) {
	ctx := context.Background()
	target := new(MockProductMirror)
	repo := repositories.NewMirroredProductRepository(repositories.NewMemoryProductRepository(), newMirror(t),
		repositories.NamedProductMirror{Name: "mock", Target: target})

	err := repo.Delete(ctx, "404")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	time.Sleep(50 * time.Millisecond)
	target.AssertNotCalled(t, "RemoveProduct", "404")
}

// slowMirror counts writes after a fixed delay.
type slowMirror struct {
	delay time.Duration
	puts  atomic.Int32
}

func (m *slowMirror) PutProduct(ctx context.Context, product *models.Product) error {
	time.Sleep(m.delay)
	m.puts.Add(1)
	return nil
}

func (m *slowMirror) RemoveProduct(ctx context.Context, id string) error {
	return nil
}

func TestMirror_BurstIsQueuedNotDropped(t *testing.T) {
	ctx := context.Background()
	target := &slowMirror{delay: 20 * time.Millisecond}
	mirror := newMirror(t)
	repo := repositories.NewMirroredProductRepository(repositories.NewMemoryProductRepository(), mirror,
		repositories.NamedProductMirror{Name: "slow", Target: target})

	const burst = 40
	start := time.Now()
	for i := 0; i < burst; i++ {
		require.NoError(t, repo.Create(ctx, &models.Product{Name: fmt.Sprintf("Meia %d", i), Price: 9.9}))
	}
	assert.Less(t, time.Since(start), 200*time.Millisecond, "writes must not wait for the mirror")

	require.Eventually(t, func() bool {
		return target.puts.Load() == burst
	}, 5*time.Second, 10*time.Millisecond)
}

func TestMirror_ReleaseDrainsQueue(t *testing.T) {
	mirror, err := repositories.NewMirror(1, time.Second)
	require.NoError(t, err)

	var done atomic.Int32
	for i := 0; i < 10; i++ {
		mirror.Submit("update", "slow", func(ctx context.Context) error {
			time.Sleep(5 * time.Millisecond)
			done.Add(1)
			return nil
		})
	}
	mirror.Release(2 * time.Second)
	assert.Equal(t, int32(10), done.Load())

	// Submitting after release is a logged no-op.
	mirror.Submit("update", "slow", func(ctx context.Context) error {
		done.Add(1)
		return nil
	})
	mirror.Release(time.Second)
	assert.Equal(t, int32(10), done.Load())
}

func TestMirroredUserRepository_StripsPasswordHash(t *testing.T) {
	ctx := context.Background()
	primary := repositories.NewMemoryUserRepository()
	secondary := repositories.NewMemoryUserRepository()
	repo := repositories.NewMirroredUserRepository(primary, newMirror(t), "memory", secondary)

	require.NoError(t, repo.Create(ctx, &models.User{Email: "ana@example.com", Name: "Ana", PasswordHash: "secret-hash"}))

	var mirrored *models.User
	assert.Eventually(t, func() bool {
		u, err := secondary.GetByEmail(ctx, "ana@example.com")
		mirrored = u
		return err == nil
	}, time.Second, 10*time.Millisecond)
	require.NotNil(t, mirrored)
	assert.Empty(t, mirrored.PasswordHash)

	stored, err := primary.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "secret-hash", stored.PasswordHash)
}
