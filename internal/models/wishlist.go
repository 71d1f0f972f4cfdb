package models

import "time"

// WishlistEntry links a user to a product saved for later.
type WishlistEntry struct {
	ID        string    `json:"id" firestore:"-"`
	UserEmail string    `json:"usuario_email" firestore:"usuario_email"`
	ProductID string    `json:"produto_id" firestore:"produto_id"`
	CreatedAt time.Time `json:"criado_em" firestore:"criado_em"`
}
