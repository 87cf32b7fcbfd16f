package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"submanager/internal/amqp"
	"submanager/internal/config"
	apphttp "submanager/internal/http"
	applog "submanager/internal/log"
	"submanager/internal/rates"
	"submanager/internal/service"
	"submanager/internal/storage"
	"submanager/internal/store"
)

func main() {
	// Load .env for local development; absent in containers.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	repo, cleanup, err := newRepository(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend",
			applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}
	logger.Info("Storage backend initialized", applog.FieldBackend, cfg.DataBackend)

	st, err := store.New(ctx, repo, cfg.DefaultPreferences())
	if err != nil {
		logger.Error("Failed to load store", applog.FieldError, err)
		os.Exit(1)
	}

	// First rate fetch happens before serving; it cannot fail, only
	// degrade to the fallback table.
	provider := rates.NewProvider(cfg.RatesURL, cfg.RatesTimeout)
	table := provider.Fetch(ctx)
	st.SetRates(table)
	logger.Info("Exchange rates loaded", applog.FieldFallback, rates.IsFallback(table))

	// The event bus is optional: without it mutations simply go
	// unannounced and the changelog worker has nothing to consume.
	var publisher service.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP publisher connected")
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	subs := service.NewSubscriptionService(st, publisher)
	srv := apphttp.NewServer(":"+cfg.Port, st, subs, provider)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting submanager server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.RatesRefreshInterval > 0 {
		g.Go(func() error {
			refreshRatesLoop(gctx, srv, cfg.RatesRefreshInterval)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// newRepository picks the persistence backend. The cleanup func is nil
// for backends without resources to release.
func newRepository(cfg *config.Config) (store.Repository, func(), error) {
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil
	case "memory":
		return storage.NewMemoryRepository(), nil, nil
	default:
		repo, err := storage.NewFileRepository(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return repo, nil, nil
	}
}

// refreshRatesLoop re-fetches the rate table on a fixed interval. A
// degraded fetch still swaps in the fallback table, keeping the
// invariant that the table in the store is always complete.
func refreshRatesLoop(ctx context.Context, srv *apphttp.Server, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			srv.RefreshRates(ctx)
		}
	}
}
