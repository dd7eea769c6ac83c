package main

import (
	"context"
	"log"
	"os"

	"restaurant-orders/internal/config"
	"restaurant-orders/internal/db"
	"restaurant-orders/internal/migrate"
	"restaurant-orders/internal/store"
)

// main prepares the Postgres snapshot table ahead of a deploy. The api applies the same
// migrations on start, so running this is only needed to check a database up front.
func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	switch cfg.StoreBackend {
	case store.BackendPostgres:
	case "", store.BackendFile:
		logger.Printf("STORE_BACKEND=file keeps the document in %s; no schema to migrate", cfg.DataFile)
		return
	default:
		logger.Fatalf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	logger.Printf("store_documents schema up to date")
}
