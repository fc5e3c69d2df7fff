package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/rpggio/officina/internal/config"
	"github.com/rpggio/officina/internal/firestore"
	"github.com/rpggio/officina/internal/memstore"
	"github.com/rpggio/officina/internal/postgres"
	"github.com/rpggio/officina/internal/repository"
	"github.com/rpggio/officina/internal/sqlite"
)

// openStore connects the configured document store. The returned close
// function is safe to call more than once.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (repository.DocumentStore, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory store: data is lost on exit")
		return memstore.New(), func() {}, nil

	case config.DriverSQLite:
		if err := ensureDBDir(cfg.SQLite.Path); err != nil {
			return nil, nil, fmt.Errorf("prepare database path: %w", err)
		}
		db, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlite.NewDocumentRepository(db), sync.OnceFunc(func() { _ = db.Close() }), nil

	case config.DriverPostgres:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx, pool, cfg.Postgres.Table); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return postgres.NewDocumentRepository(pool, cfg.Postgres.Table), sync.OnceFunc(pool.Close), nil

	case config.DriverFirestore:
		store, err := firestore.New(ctx, cfg.Firestore.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		return store, sync.OnceFunc(func() { _ = store.Close() }), nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
