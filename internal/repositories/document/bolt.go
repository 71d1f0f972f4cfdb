package document

import (
	"context"
	"fmt"
	"time"

	"mixmodas/internal/repositories"

	jsoniter "github.com/json-iterator/go"
	"go.etcd.io/bbolt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BoltBackend stores JSON documents in an embedded bbolt file, one bucket per
// collection.
type BoltBackend struct {
	db *bbolt.DB
}

// OpenBolt opens (or creates) the database file at path.
func OpenBolt(path string) (*BoltBackend, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{ProductsCollection, UsersCollection, WishlistCollection} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}
	return &BoltBackend{db: db}, nil
}

func (b *BoltBackend) Name() string { return "bolt" }

func (b *BoltBackend) Get(_ context.Context, collection, id string, dst interface{}) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return fmt.Errorf("%s/%s not found: %w", collection, id, repositories.ErrNotFound)
		}
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%s/%s not found: %w", collection, id, repositories.ErrNotFound)
		}
		if err := json.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
		}
		return nil
	})
}

func (b *BoltBackend) Set(_ context.Context, collection, id string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(id), data)
	})
}

func (b *BoltBackend) Delete(_ context.Context, collection, id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(id))
	})
}

func (b *BoltBackend) Scan(_ context.Context, collection string, fn func(id string, decode DecodeFunc) error) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			return fn(string(k), func(dst interface{}) error {
				return json.Unmarshal(v, dst)
			})
		})
	})
}

func (b *BoltBackend) Ping(_ context.Context) error {
	return b.db.View(func(*bbolt.Tx) error { return nil })
}

func (b *BoltBackend) Close() error {
	return b.db.Close()
}
