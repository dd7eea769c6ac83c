package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"restaurant-orders/internal/config"
	"restaurant-orders/internal/seed"
	"restaurant-orders/internal/store"
)

func main() {
	var catalogPath string
	flag.StringVar(&catalogPath, "catalog", "", "Optional YAML catalog to seed instead of the built-in menu")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	catalog, err := loadCatalog(catalogPath)
	if err != nil {
		logger.Fatalf("load catalog: %v", err)
	}

	ctx := context.Background()
	st, release, err := store.OpenBackend(ctx, store.BackendConfig{
		Backend:  cfg.StoreBackend,
		DataFile: cfg.DataFile,
		DSN:      cfg.DBConnString,
	}, logger)
	if errors.Is(err, store.ErrLocked) {
		logger.Fatalf("open store: %v; stop the api first, seeding needs exclusive access", err)
	}
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer release()

	applied, err := seed.Apply(ctx, st, catalog)
	if err != nil {
		logger.Fatalf("seed apply: %v", err)
	}
	if err := st.Close(ctx); err != nil {
		logger.Fatalf("flush store: %v", err)
	}

	if applied {
		logger.Println("seed applied")
	} else {
		logger.Println("catalog already populated, nothing to seed")
	}
}

func loadCatalog(path string) (seed.Catalog, error) {
	if path == "" {
		return seed.Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return seed.Catalog{}, err
	}
	return seed.Parse(raw)
}
