// Package document implements the persistence contracts on top of a document
// database. Two backends are provided: Firestore for hosted deployments and an
// embedded bbolt file for single-node ones.
package document

import "context"

// Collection names shared by every backend.
const (
	ProductsCollection = "produtos"
	UsersCollection    = "usuarios"
	WishlistCollection = "lista_desejos"
	CartCollection     = "carrinho"
)

// DecodeFunc decodes the current document into dst.
type DecodeFunc func(dst interface{}) error

// Backend is the minimal document API the stores need. Get returns an error
// wrapping repositories.ErrNotFound for missing documents.
type Backend interface {
	Name() string
	Get(ctx context.Context, collection, id string, dst interface{}) error
	Set(ctx context.Context, collection, id string, doc interface{}) error
	Delete(ctx context.Context, collection, id string) error
	// Scan calls fn for every document of the collection until fn returns an error.
	Scan(ctx context.Context, collection string, fn func(id string, decode DecodeFunc) error) error
	Ping(ctx context.Context) error
	Close() error
}
