package document

import (
	"context"
	"errors"
	"fmt"

	"mixmodas/internal/repositories"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreBackend stores documents in Cloud Firestore.
type FirestoreBackend struct {
	client *firestore.Client
}

// NewFirestoreBackend wraps an initialized Firestore client.
func NewFirestoreBackend(client *firestore.Client) *FirestoreBackend {
	return &FirestoreBackend{client: client}
}

func (b *FirestoreBackend) Name() string { return "firestore" }

func (b *FirestoreBackend) Get(ctx context.Context, collection, id string, dst interface{}) error {
	snap, err := b.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%s/%s not found: %w", collection, id, repositories.ErrNotFound)
		}
		return fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	if err := snap.DataTo(dst); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func (b *FirestoreBackend) Set(ctx context.Context, collection, id string, doc interface{}) error {
	if _, err := b.client.Collection(collection).Doc(id).Set(ctx, doc); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (b *FirestoreBackend) Delete(ctx context.Context, collection, id string) error {
	if _, err := b.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (b *FirestoreBackend) Scan(ctx context.Context, collection string, fn func(id string, decode DecodeFunc) error) error {
	iter := b.client.Collection(collection).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", collection, err)
		}
		if err := fn(snap.Ref.ID, snap.DataTo); err != nil {
			return err
		}
	}
}

// Ping reads at most one product document.
func (b *FirestoreBackend) Ping(ctx context.Context) error {
	iter := b.client.Collection(ProductsCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

func (b *FirestoreBackend) Close() error {
	return b.client.Close()
}
