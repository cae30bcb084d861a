package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/pubsub"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/feed"
	"storefront/internal/httpserver"
	"storefront/internal/observability"
	"storefront/internal/reconcile"
	cartrepo "storefront/internal/repository/cart"
	productrepo "storefront/internal/repository/product"
	cartsvc "storefront/internal/service/cart"
	productsvc "storefront/internal/service/product"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	changeFeed, notifier, closeFeed, err := buildFeed(ctx, cfg, dbpool, logger)
	if err != nil {
		logger.Fatal("init catalog feed", zap.String("feed", cfg.CatalogFeed), zap.Error(err))
	}
	defer closeFeed()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	productService := productsvc.New(productRepo, notifier, logger)
	cartService := cartsvc.New(cartsvc.Deps{
		Products: productRepo,
		Carts:    cartrepo.NewPostgres(dbpool),
		Currency: cfg.Currency,
		Logger:   logger,
	})

	process, err := reconcile.NewProcess(reconcile.ProcessDeps{
		Catalog: productService,
		Feed:    changeFeed,
		Target:  cartService,
		Logger:  logger.Named("reconcile"),
	})
	if err != nil {
		logger.Fatal("init reconciliation", zap.Error(err))
	}
	if err := process.Start(ctx); err != nil {
		logger.Fatal("start reconciliation", zap.Error(err))
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		ProductSvc:  productService,
		CartSvc:     cartService,
		CORSOrigins: origins(cfg.CORSOrigins),
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	process.Stop()
	if err := cartService.Flush(shutdownCtx); err != nil {
		logger.Warn("flush carts", zap.Error(err))
	}
	logger.Info("server stopped")
}

// buildFeed picks the catalog change feed. The notifier is only set for the in-memory feed; the other feeds are
// fed by the database trigger or an external publisher.
func buildFeed(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, logger *zap.Logger) (reconcile.ChangeFeed, productsvc.Notifier, func(), error) {
	noop := func() {}
	switch cfg.CatalogFeed {
	case config.FeedPostgres:
		return feed.NewPostgres(pool, cfg.CatalogChannel, logger.Named("feed")), nil, noop, nil
	case config.FeedPubSub:
		client, err := pubsub.NewClient(ctx, cfg.PubSubProject)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("pubsub client: %w", err)
		}
		f, err := feed.NewPubSub(client.Subscription(cfg.PubSubSubscription), logger.Named("feed"))
		if err != nil {
			client.Close()
			return nil, nil, noop, err
		}
		return f, nil, func() { _ = client.Close() }, nil
	case config.FeedMemory:
		m := feed.NewMemory(64)
		return m, m, noop, nil
	default:
		return nil, nil, noop, nil
	}
}

func origins(list []string) []string {
	for _, o := range list {
		if o == "*" {
			return nil
		}
	}
	return list
}
