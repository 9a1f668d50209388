package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/eventsplit/internal/config"
	"github.com/mmynk/eventsplit/internal/settle"
	"github.com/mmynk/eventsplit/internal/storage"
	"github.com/mmynk/eventsplit/internal/storage/badger"
	"github.com/mmynk/eventsplit/internal/storage/filestore"
	"github.com/mmynk/eventsplit/internal/storage/sqlite"
)

// openStore opens the backend selected by cfg.
func openStore(cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	path := cfg.StorePath()
	switch cfg.Backend {
	case config.BackendFile:
		return filestore.New(path, filestore.WithLogger(logger))
	case config.BackendSQLite:
		return sqlite.New(path)
	case config.BackendBadger:
		return badger.New(
			badger.WithDataDir(path),
			badger.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// openCore opens the configured store and builds the core service over it.
// The caller closes the returned store.
func openCore(cmd *cobra.Command) (*settle.Service, storage.Store, *config.Config, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, nil, nil, fmt.Errorf("no config found in context")
	}

	logger := slog.Default()
	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Backend, err)
	}
	slog.Debug("Storage initialized", "backend", cfg.Backend, "path", cfg.StorePath())

	core := settle.New(store,
		settle.WithRoster(cfg.DefaultRoster),
		settle.WithMaxReceiptBytes(cfg.MaxReceiptBytes),
		settle.WithReceiptExtensions(cfg.ReceiptExtensions),
		settle.WithLogger(logger),
	)
	return core, store, cfg, nil
}
