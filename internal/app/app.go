// Package app wires configuration, storage, identity and the HTTP server
// together.
package app

import (
	"context"
	"time"

	"mixmodas/internal/captcha"
	"mixmodas/internal/config"
	"mixmodas/internal/handlers"
	"mixmodas/internal/identity"
	"mixmodas/internal/mail"
	"mixmodas/internal/middleware"
	"mixmodas/internal/models"
	"mixmodas/internal/services"
	"mixmodas/internal/uploads"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	outboundTimeout        = 10 * time.Second
	bodyLimit              = 10 * 1024 * 1024
)

// App is a fully wired store backend.
type App struct {
	Config   *config.Config
	Fiber    *fiber.App
	Storage  *Storage
	Auth     *services.AuthService
	Products *services.ProductService
	Wishlist *services.WishlistService
	Cart     *services.CartService
}

// New opens storage and builds services, handlers and routes. Call Close
// when done, even if Listen was never called.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	storage, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider, err := newIdentityProvider(cfg, storage)
	if err != nil {
		storage.Close()
		return nil, err
	}

	uploadStore, err := uploads.NewStore(cfg.Paths.UploadsDir)
	if err != nil {
		storage.Close()
		return nil, err
	}

	verifier := captcha.New(cfg.Captcha.Secret, cfg.Captcha.VerifyURL, outboundTimeout)
	mailer := mail.New(mail.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	a := &App{
		Config:   cfg,
		Storage:  storage,
		Auth:     services.NewAuthService(storage.Users, provider, verifier, mailer),
		Products: services.NewProductService(storage.Products),
		Wishlist: services.NewWishlistService(storage.Wishlist, storage.Products),
		Cart:     services.NewCartService(storage.Carts, storage.Products),
	}
	a.Fiber = a.newServer(uploadStore)

	zap.L().Info("application ready",
		zap.String("auth", provider.Name()),
		zap.String("storage", cfg.Storage.Primary),
		zap.String("document_store", cfg.Storage.DocumentStore),
	)
	return a, nil
}

func newIdentityProvider(cfg *config.Config, storage *Storage) (identity.Provider, error) {
	if cfg.Auth.Strategy == config.AuthFirebase {
		return identity.NewFirebaseProvider(storage.AuthClient, identity.FirebaseConfig{
			APIKey:  cfg.Firebase.APIKey,
			Timeout: outboundTimeout,
		}), nil
	}
	return identity.NewLocalProvider(storage.Users, identity.LocalConfig{
		JWTSecret:     cfg.Auth.JWTSecret,
		TokenDuration: cfg.Auth.TokenTTL,
		ResetURL:      cfg.App.BaseURL + "/redefinir-senha",
	}), nil
}

func (a *App) newServer(uploadStore *uploads.Store) *fiber.App {
	cfg := a.Config
	server := fiber.New(fiber.Config{
		AppName:      "mixmodas",
		BodyLimit:    bodyLimit,
		JSONEncoder:  jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:  jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		ErrorHandler: handlers.ErrorHandler,
	})

	// --- Middleware ---
	server.Use(recover.New())
	server.Use(requestid.New())
	server.Use(cors.New())
	server.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: zap.NewStdLog(zap.L()).Writer(),
	}))

	// --- API Routes ---
	api := server.Group("/api")
	admin := []fiber.Handler{
		middleware.AuthRequired(a.Auth),
		middleware.RequireRole(models.RoleAdmin),
	}

	handlers.NewAuthHandler(a.Auth, firebaseWebConfig(cfg)).RegisterRoutes(api)
	handlers.NewProductHandler(a.Products, uploadStore).RegisterRoutes(api, admin...)
	handlers.NewWishlistHandler(a.Wishlist).RegisterRoutes(api)
	handlers.NewCartHandler(a.Cart).RegisterRoutes(api, middleware.AuthRequired(a.Auth))
	handlers.NewStatusHandler(fiber.Map{
		"auth":    a.Auth.ProviderName(),
		"storage": cfg.Storage.Primary,
	}, a.Storage.Checks...).RegisterRoutes(server, api)

	// --- Static files ---
	server.Static("/uploads", uploadStore.Dir())
	server.Static("/static", cfg.Paths.StaticDir)
	server.Static("/templates", cfg.Paths.TemplatesDir)
	server.Static("/", cfg.Paths.StaticDir)

	return server
}

func firebaseWebConfig(cfg *config.Config) *handlers.FirebaseWebConfig {
	if cfg.Firebase.APIKey == "" {
		return nil
	}
	return &handlers.FirebaseWebConfig{
		APIKey:            cfg.Firebase.APIKey,
		AuthDomain:        cfg.Firebase.AuthDomain,
		ProjectID:         cfg.Firebase.ProjectID,
		StorageBucket:     cfg.Firebase.StorageBucket,
		MessagingSenderID: cfg.Firebase.MessagingSenderID,
		AppID:             cfg.Firebase.AppID,
	}
}

// Listen serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Listen(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.String("addr", a.Config.App.Port))
		errCh <- a.Fiber.Listen(a.Config.App.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	if err := a.Fiber.ShutdownWithTimeout(defaultShutdownTimeout); err != nil {
		zap.L().Error("error during fiber shutdown", zap.Error(err))
	}
	return nil
}

// Close releases the mirror pool and every backend connection.
func (a *App) Close() {
	a.Storage.Close()
	zap.L().Info("server gracefully stopped")
}
