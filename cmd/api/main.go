package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-orders/internal/config"
	"restaurant-orders/internal/httpserver"
	"restaurant-orders/internal/importer"
	"restaurant-orders/internal/notify"
	"restaurant-orders/internal/payment/paypal"
	"restaurant-orders/internal/pricing"
	categoryrepo "restaurant-orders/internal/repository/category"
	orderrepo "restaurant-orders/internal/repository/order"
	productrepo "restaurant-orders/internal/repository/product"
	"restaurant-orders/internal/seed"
	backupsvc "restaurant-orders/internal/service/backup"
	categorysvc "restaurant-orders/internal/service/category"
	ordersvc "restaurant-orders/internal/service/order"
	productsvc "restaurant-orders/internal/service/product"
	"restaurant-orders/internal/store"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	st, release, err := store.OpenBackend(ctx, store.BackendConfig{
		Backend:  cfg.StoreBackend,
		DataFile: cfg.DataFile,
		DSN:      cfg.DBConnString,
	}, logger)
	if errors.Is(err, store.ErrLocked) {
		logger.Fatalf("open store: %v; another api, seed or importer process is running", err)
	}
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer release()

	catalog, err := seed.Default()
	if err != nil {
		logger.Fatalf("load seed catalog: %v", err)
	}
	if seeded, err := seed.Apply(ctx, st, catalog); err != nil {
		logger.Printf("seed: apply error=%v", err)
	} else if seeded {
		logger.Printf("seed: default catalog applied")
	}

	if cfg.AdminToken == "" {
		logger.Printf("ADMIN_TOKEN not set, admin routes disabled")
	}

	mode := paypal.ModeSandbox
	if !cfg.PayPalSandbox {
		mode = paypal.ModeLive
	}
	clientID, secret := cfg.PayPalCredentials()
	gateway := paypal.New(paypal.Config{
		Mode:         mode,
		ClientID:     clientID,
		ClientSecret: secret,
		BaseURL:      cfg.PayPalAPIBase,
		Currency:     cfg.SettlementCurrency,
		Timeout:      cfg.PayPalTimeout,
	}, logger)
	if !gateway.Configured() {
		logger.Printf("paypal %s credentials missing, checkout will fail", mode)
	}

	telegram := notify.NewTelegram(notify.TelegramConfig{
		BotToken:           cfg.TelegramBotToken,
		ChatID:             cfg.TelegramChatID,
		Locale:             cfg.NotifyLocale,
		BaseCurrency:       cfg.BaseCurrency,
		SettlementCurrency: cfg.SettlementCurrency,
	}, logger)
	dispatcher := notify.NewDispatcher(telegram, 10*time.Second, logger)

	productRepo := productrepo.NewStore(st, logger)
	categoryRepo := categoryrepo.NewStore(st)
	orderRepo := orderrepo.NewStore(st, logger)

	productService := productsvc.New(productRepo)
	categoryService := categorysvc.New(categoryRepo)
	orderService := ordersvc.New(orderRepo, productRepo, pricing.New(cfg.ConversionRate), gateway, dispatcher, logger)
	backupService := backupsvc.New(st, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		ProductSvc:  productService,
		CategorySvc: categoryService,
		OrderSvc:    orderService,
		BackupSvc:   backupService,
		Documents:   st,
		Import: func(ctx context.Context, r io.Reader) (int, error) {
			return importer.NewCSVImporter(r, productService).Run(ctx)
		},
		Ready:         st.Ping,
		AdminToken:    cfg.AdminToken,
		PublicBaseURL: cfg.PublicBaseURL,
		AllowOrigins:  cfg.CORSAllowOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if cfg.PendingOrderTTL > 0 {
		go expireLoop(sweepCtx, orderService, cfg.PendingOrderTTL, logger)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
	stopSweep()

	if err := dispatcher.Wait(ctx); err != nil {
		logger.Printf("notifications still in flight: %v", err)
	}
	if err := st.Close(ctx); err != nil {
		logger.Printf("store flush failed: %v", err)
	}
}

// expireLoop expires abandoned checkouts once per TTL interval, capped at one minute.
func expireLoop(ctx context.Context, svc *ordersvc.Service, ttl time.Duration, logger *log.Logger) {
	interval := ttl
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.ExpirePending(ctx, ttl)
			if err != nil {
				logger.Printf("expiry: sweep error=%v", err)
				continue
			}
			if n > 0 {
				logger.Printf("expiry: expired=%d", n)
			}
		}
	}
}
