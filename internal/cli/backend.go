package cli

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/yelinaung/invoicekit/internal/config"
	"gitlab.com/yelinaung/invoicekit/internal/database"
	"gitlab.com/yelinaung/invoicekit/internal/kvstore"
	"gitlab.com/yelinaung/invoicekit/internal/logger"
	"gitlab.com/yelinaung/invoicekit/internal/store"
)

// OpenStore builds the store for the configured backend. The returned
// function releases the backend.
func OpenStore(ctx context.Context, cfg *config.Config, now func() time.Time) (*store.Store, func(), error) {
	log := logger.WithComponent("backend")

	var (
		kv      kvstore.Store
		closeFn = func() {}
	)

	switch cfg.StorageBackend {
	case config.BackendMemory:
		kv = kvstore.NewMemoryStore()
	case config.BackendPostgres:
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		kv = kvstore.NewPostgresStore(pool)
		closeFn = pool.Close
	default:
		fs, err := kvstore.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open data directory: %w", err)
		}
		kv = fs
	}

	log.Debug().Str("backend", cfg.StorageBackend).Msg("Storage backend ready")

	taxRate := cfg.DefaultTaxRate
	st := store.New(kv, store.Options{
		Now:            now,
		DefaultTaxRate: &taxRate,
		DefaultDueDays: cfg.DefaultDueDays,
		UpcomingLimit:  cfg.UpcomingLimit,
	})
	return st, closeFn, nil
}
