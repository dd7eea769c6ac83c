package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"restaurant-orders/internal/config"
	"restaurant-orders/internal/importer"
	productrepo "restaurant-orders/internal/repository/product"
	productsvc "restaurant-orders/internal/service/product"
	"restaurant-orders/internal/store"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to menu CSV export")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	st, release, err := store.OpenBackend(ctx, store.BackendConfig{
		Backend:  cfg.StoreBackend,
		DataFile: cfg.DataFile,
		DSN:      cfg.DBConnString,
	}, logger)
	if errors.Is(err, store.ErrLocked) {
		log.Fatalf("open store: %v; stop the api or upload the file to POST /api/admin/import instead", err)
	}
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer release()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, productsvc.New(productrepo.NewStore(st, logger)))

	start := time.Now()
	count, runErr := imp.Run(ctx)
	if err := st.Close(ctx); err != nil {
		log.Fatalf("flush store: %v", err)
	}
	if runErr != nil {
		log.Fatalf("import failed after %d products: %v", count, runErr)
	}

	fmt.Printf("Imported %d products in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
