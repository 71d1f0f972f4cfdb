package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"mixmodas/internal/models"
	"mixmodas/internal/repositories/document"
	"mixmodas/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyCatalogEvent(t *testing.T) {
	backend, err := document.OpenBolt(filepath.Join(t.TempDir(), "replica.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	store := document.NewProductStore(backend)
	ctx := context.Background()

	saved := rabbitmq.CatalogEvent{
		Type:      rabbitmq.EventProductSaved,
		ProductID: "7",
		Product:   &models.Product{ID: "7", Name: "Vestido Elegante", Price: 189.9, Category: "feminino"},
		At:        time.Now(),
	}
	require.NoError(t, applyCatalogEvent(ctx, store, saved))

	got, err := store.GetByID(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "Vestido Elegante", got.Name)

	removed := rabbitmq.CatalogEvent{Type: rabbitmq.EventProductRemoved, ProductID: "7", At: time.Now()}
	require.NoError(t, applyCatalogEvent(ctx, store, removed))
	_, err = store.GetByID(ctx, "7")
	assert.Error(t, err)
}

func TestApplyCatalogEvent_Rejects(t *testing.T) {
	ctx := context.Background()
	backend, err := document.OpenBolt(filepath.Join(t.TempDir(), "replica.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	store := document.NewProductStore(backend)

	assert.Error(t, applyCatalogEvent(ctx, store, rabbitmq.CatalogEvent{Type: rabbitmq.EventProductSaved, ProductID: "1"}))
	assert.Error(t, applyCatalogEvent(ctx, store, rabbitmq.CatalogEvent{Type: "produto.desconhecido", ProductID: "1"}))
}

func TestApplyCatalogEvent_WithoutTargetOnlyLogs(t *testing.T) {
	err := applyCatalogEvent(context.Background(), nil, rabbitmq.CatalogEvent{Type: "qualquer", ProductID: "1"})
	assert.NoError(t, err)
}
