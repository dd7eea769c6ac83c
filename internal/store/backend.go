package store

import (
	"context"
	"fmt"
	"log"

	"restaurant-orders/internal/db"
	"restaurant-orders/internal/migrate"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type BackendConfig struct {
	Backend  string
	DataFile string
	DSN      string
}

// OpenBackend locks and opens the store on the configured snapshot backend. It fails with
// ErrLocked while another process holds the same snapshot. The returned release func drops
// the lock and closes backend resources; it must run after the store is closed.
func OpenBackend(ctx context.Context, cfg BackendConfig, logger *log.Logger) (*Store, func(), error) {
	switch cfg.Backend {
	case "", BackendFile:
		unlock, err := lockFile(cfg.DataFile + ".lock")
		if err != nil {
			return nil, nil, err
		}
		st, err := Open(ctx, NewFileSnapshotter(cfg.DataFile), logger)
		if err != nil {
			unlock()
			return nil, nil, err
		}
		return st, unlock, nil
	case BackendPostgres:
		pool, err := db.Connect(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect db: %w", err)
		}
		unlock, err := acquireAdvisoryLock(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		release := func() {
			unlock()
			pool.Close()
		}
		if err := migrate.Apply(ctx, pool); err != nil {
			release()
			return nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
		st, err := Open(ctx, NewPostgresSnapshotter(pool), logger)
		if err != nil {
			release()
			return nil, nil, err
		}
		return st, release, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
