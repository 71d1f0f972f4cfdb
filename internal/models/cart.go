package models

import "time"

// CartLine is one stored row of a server-side cart.
type CartLine struct {
	UserEmail string    `json:"usuario_email" firestore:"usuario_email"`
	ProductID string    `json:"produto_id" firestore:"produto_id"`
	Quantity  int       `json:"quantidade" firestore:"quantidade"`
	UpdatedAt time.Time `json:"atualizado_em" firestore:"atualizado_em"`
}

// CartItem is a cart line priced with the product's current data.
type CartItem struct {
	ProductID string  `json:"produto_id"`
	Name      string  `json:"nome"`
	Image     *string `json:"imagem"`
	Price     float64 `json:"preco"`
	Quantity  int     `json:"quantidade"`
	Subtotal  float64 `json:"subtotal"`
}

// Cart is what the client sees: priced items and their total.
type Cart struct {
	UserEmail string     `json:"usuario_email"`
	Items     []CartItem `json:"itens"`
	Total     float64    `json:"total"`
}
