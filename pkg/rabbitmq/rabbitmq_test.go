package rabbitmq_test

import (
	"encoding/json"
	"testing"
	"time"

	"mixmodas/internal/models"
	"mixmodas/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogEvent_JSONShape(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	event := rabbitmq.CatalogEvent{
		Type:      rabbitmq.EventProductSaved,
		ProductID: "7",
		Product:   &models.Product{ID: "7", Name: "Camiseta", Price: 39.9, Category: "masculino"},
		At:        at,
	}
	body, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "produto.salvo", decoded["type"])
	assert.Equal(t, "7", decoded["produto_id"])
	produto, ok := decoded["produto"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Camiseta", produto["nome"])
	assert.Equal(t, 39.9, produto["preco"])
}

func TestCatalogEvent_RemovalOmitsProduct(t *testing.T) {
	body, err := json.Marshal(rabbitmq.CatalogEvent{Type: rabbitmq.EventProductRemoved, ProductID: "7"})
	require.NoError(t, err)
	assert.NotContains(t, string(body), "\"produto\"")
}
