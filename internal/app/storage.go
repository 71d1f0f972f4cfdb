package app

import (
	"context"
	"fmt"

	"mixmodas/internal/config"
	"mixmodas/internal/handlers"
	"mixmodas/internal/repositories"
	"mixmodas/internal/repositories/document"
	"mixmodas/pkg/rabbitmq"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

// Storage holds the repositories the services run on plus everything that
// must be closed on shutdown.
type Storage struct {
	Products repositories.ProductRepository
	Users    repositories.UserRepository
	Wishlist repositories.WishlistRepository
	Carts    repositories.CartRepository

	DB         *gorm.DB
	Document   document.Backend
	Events     *rabbitmq.Client
	AuthClient *auth.Client
	Mirror     *repositories.Mirror

	Checks []handlers.HealthCheck
}

// OpenStorage connects the configured backends and assembles the primary
// repositories, decorated with mirror writes where secondaries exist.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	s := &Storage{}
	if err := s.open(ctx, cfg); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Storage) open(ctx context.Context, cfg *config.Config) error {
	if cfg.Auth.Strategy == config.AuthFirebase {
		fbApp, err := newFirebaseApp(ctx, cfg.Firebase)
		if err != nil {
			return err
		}
		client, err := fbApp.Auth(ctx)
		if err != nil {
			return fmt.Errorf("firebase auth: %w", err)
		}
		s.AuthClient = client
	}

	backend, err := OpenDocumentStore(ctx, cfg)
	if err != nil {
		return err
	}
	if backend != nil {
		s.Document = backend
		s.Checks = append(s.Checks, handlers.HealthCheck{Name: backend.Name(), Ping: backend.Ping})
	}

	switch cfg.Storage.Primary {
	case config.PrimarySQL:
		db, err := OpenDatabase(cfg.Database)
		if err != nil {
			return err
		}
		s.DB = db
		if err := repositories.AutoMigrate(db); err != nil {
			return err
		}
		s.Products = repositories.NewGORMProductRepository(db)
		s.Users = repositories.NewGORMUserRepository(db)
		s.Wishlist = repositories.NewGORMWishlistRepository(db)
		s.Carts = repositories.NewGORMCartRepository(db)
		s.Checks = append(s.Checks, handlers.HealthCheck{Name: cfg.Database.Type, Ping: s.pingDatabase})
	case config.PrimaryDocument:
		s.Products = document.NewProductStore(s.Document)
		s.Users = document.NewUserStore(s.Document)
		s.Wishlist = document.NewWishlistStore(s.Document)
		s.Carts = document.NewCartStore(s.Document)
	case config.PrimaryMemory:
		zap.L().Warn("using in-memory storage, data is lost on restart")
		s.Products = repositories.NewMemoryProductRepository()
		s.Users = repositories.NewMemoryUserRepository()
		s.Wishlist = repositories.NewMemoryWishlistRepository()
		s.Carts = repositories.NewMemoryCartRepository()
	default:
		return fmt.Errorf("unsupported storage primary %q", cfg.Storage.Primary)
	}

	if cfg.RabbitMQ.URL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL})
		if err != nil {
			// Catalog events are a secondary: the store keeps serving without them.
			zap.L().Warn("catalog events disabled", zap.Error(err))
		} else {
			s.Events = client
			s.Checks = append(s.Checks, handlers.HealthCheck{Name: "rabbitmq", Ping: s.pingEvents})
		}
	}

	return s.decorate(cfg)
}

// decorate wraps the primaries with best-effort copies to the document store
// and the catalog event queue.
func (s *Storage) decorate(cfg *config.Config) error {
	var productTargets []repositories.NamedProductMirror
	if cfg.MirrorsToDocument() {
		productTargets = append(productTargets, repositories.NamedProductMirror{
			Name:   s.Document.Name(),
			Target: document.NewProductStore(s.Document),
		})
	}
	if s.Events != nil {
		productTargets = append(productTargets, repositories.NamedProductMirror{
			Name:   "rabbitmq",
			Target: s.Events,
		})
	}
	if len(productTargets) == 0 {
		return nil
	}

	mirror, err := repositories.NewMirror(cfg.Storage.MirrorWorkers, cfg.Storage.MirrorTimeout)
	if err != nil {
		return fmt.Errorf("failed to start mirror pool: %w", err)
	}
	s.Mirror = mirror

	s.Products = repositories.NewMirroredProductRepository(s.Products, mirror, productTargets...)
	if cfg.MirrorsToDocument() {
		s.Users = repositories.NewMirroredUserRepository(s.Users, mirror, s.Document.Name(), document.NewUserStore(s.Document))
	}

	names := make([]string, 0, len(productTargets))
	for _, t := range productTargets {
		names = append(names, t.Name)
	}
	zap.L().Info("mirror writes enabled", zap.Strings("targets", names), zap.Int("workers", cfg.Storage.MirrorWorkers))
	return nil
}

// OpenDocumentStore opens the backend named by DOCUMENT_STORE. It returns
// nil, nil for "none".
func OpenDocumentStore(ctx context.Context, cfg *config.Config) (document.Backend, error) {
	switch cfg.Storage.DocumentStore {
	case config.DocumentBolt:
		backend, err := document.OpenBolt(cfg.Storage.BoltPath)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case config.DocumentFirestore:
		fbApp, err := newFirebaseApp(ctx, cfg.Firebase)
		if err != nil {
			return nil, err
		}
		client, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("firestore: %w", err)
		}
		return document.NewFirestoreBackend(client), nil
	default:
		return nil, nil
	}
}

func newFirebaseApp(ctx context.Context, cfg config.FirebaseConfig) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	var fbConfig *firebase.Config
	if cfg.ProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	fbApp, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase init: %w", err)
	}
	zap.L().Info("firebase initialized", zap.String("project", cfg.ProjectID))
	return fbApp, nil
}

func (s *Storage) pingDatabase(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Storage) pingEvents(_ context.Context) error {
	if !s.Events.Connected() {
		return fmt.Errorf("rabbitmq connection closed")
	}
	return nil
}

// Close drains pending mirror writes, then closes every backend.
func (s *Storage) Close() {
	if s.Mirror != nil {
		s.Mirror.Release(defaultShutdownTimeout)
	}
	if s.Events != nil {
		if err := s.Events.Close(); err != nil {
			zap.L().Warn("failed to close rabbitmq client", zap.Error(err))
		}
	}
	if s.Document != nil {
		if err := s.Document.Close(); err != nil {
			zap.L().Warn("failed to close document store", zap.String("backend", s.Document.Name()), zap.Error(err))
		}
	}
	if s.DB != nil {
		closeDatabase(s.DB)
	}
}
