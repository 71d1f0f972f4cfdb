package app

import (
	"context"
	"fmt"

	"mixmodas/internal/services"

	"go.uber.org/zap"
)

const placeholderImage = "/static/img/sem-foto.png"

// SampleProducts is one product per category class.
var SampleProducts = []services.ProductInput{
	{
		"nome":       "Camiseta Básica Masculina",
		"descricao":  "Camiseta básica de algodão 100%",
		"preco":      39.90,
		"quantidade": 100,
		"categoria":  "masculino",
		"tamanho":    "M",
		"cor":        "Branco",
		"composicao": "100% Algodão",
		"imagem":     placeholderImage,
	},
	{
		"nome":       "Vestido Elegante",
		"descricao":  "Vestido para ocasiões especiais",
		"preco":      189.90,
		"quantidade": 20,
		"categoria":  "feminino",
		"tamanho":    "P",
		"cor":        "Preto",
		"composicao": "Cetim e Poliéster",
		"imagem":     placeholderImage,
	},
	{
		"nome":       "Conjunto Infantil Unissex",
		"descricao":  "Conjunto confortável para crianças",
		"preco":      69.90,
		"quantidade": 50,
		"categoria":  "infantil",
		"idade":      "3-6 anos",
		"genero":     "Unissex",
		"imagem":     placeholderImage,
	},
	{
		"nome":       "Óculos de Sol",
		"descricao":  "Óculos de sol com proteção UV",
		"preco":      79.90,
		"quantidade": 35,
		"categoria":  "acessorios",
		"tipo":       "Óculos",
		"material":   "Acetato",
		"cor":        "Preto",
		"imagem":     placeholderImage,
	},
}

// Seed creates SampleProducts. Unless force is set, a catalog that already
// has products is left alone. It returns the number of products created.
func Seed(ctx context.Context, products *services.ProductService, force bool) (int, error) {
	if !force {
		existing, err := products.ListProducts(ctx, "")
		if err != nil {
			return 0, err
		}
		if len(existing) > 0 {
			zap.L().Info("catalog not empty, skipping seed", zap.Int("products", len(existing)))
			return 0, nil
		}
	}

	created := 0
	for _, in := range SampleProducts {
		p, err := products.CreateProduct(ctx, in)
		if err != nil {
			return created, fmt.Errorf("failed to seed %v: %w", in["nome"], err)
		}
		zap.L().Info("seeded product", zap.String("id", p.ID), zap.String("nome", p.Name))
		created++
	}
	return created, nil
}
