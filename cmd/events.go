package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"mixmodas/internal/app"
	"mixmodas/internal/config"
	"mixmodas/internal/repositories"
	"mixmodas/internal/repositories/document"
	"mixmodas/pkg/rabbitmq"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newConsumeEventsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "consume-events",
		Short: "Apply catalog events from RabbitMQ to the document store",
		Long: `Consume the catalog_events queue. Every produto.salvo / produto.removido event
is logged and, when DOCUMENT_STORE is bolt or firestore, applied to it. This lets a
replica document store follow the catalog without sharing the primary database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.setup()
			if err != nil {
				return err
			}
			defer syncLogger()

			if cfg.RabbitMQ.URL == "" {
				return fmt.Errorf("RABBITMQ_URL is required")
			}
			client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL})
			if err != nil {
				return err
			}
			defer client.Close()

			target, closeTarget, err := openEventTarget(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeTarget()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			zap.L().Info("consuming catalog events", zap.String("queue", rabbitmq.CatalogQueue))
			return client.ConsumeCatalogEvents(ctx, func(event rabbitmq.CatalogEvent) error {
				return applyCatalogEvent(ctx, target, event)
			})
		},
	}
}

// openEventTarget opens the document store events are applied to. The
// returned target is nil when no document store is configured.
func openEventTarget(ctx context.Context, cfg *config.Config) (repositories.ProductMirror, func(), error) {
	backend, err := app.OpenDocumentStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if backend == nil {
		zap.L().Info("no document store configured, events are only logged")
		return nil, func() {}, nil
	}
	return document.NewProductStore(backend), func() {
		if err := backend.Close(); err != nil {
			zap.L().Warn("failed to close document store", zap.Error(err))
		}
	}, nil
}

func applyCatalogEvent(ctx context.Context, target repositories.ProductMirror, event rabbitmq.CatalogEvent) error {
	zap.L().Info("catalog event",
		zap.String("type", event.Type),
		zap.String("produto_id", event.ProductID),
		zap.Time("at", event.At),
	)
	if target == nil {
		return nil
	}
	switch event.Type {
	case rabbitmq.EventProductSaved:
		if event.Product == nil {
			return fmt.Errorf("event %s for %s has no product", event.Type, event.ProductID)
		}
		return target.PutProduct(ctx, event.Product)
	case rabbitmq.EventProductRemoved:
		return target.RemoveProduct(ctx, event.ProductID)
	default:
		return fmt.Errorf("unknown catalog event type %q", event.Type)
	}
}
