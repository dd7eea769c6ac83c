package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"restaurant-orders/internal/domain"
	ordersvc "restaurant-orders/internal/service/order"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type OrderService interface {
	Create(ctx context.Context, in ordersvc.CreateInput) (*ordersvc.CreateResult, error)
	Finalize(ctx context.Context, orderID, sessionToken string) (*domain.Order, error)
	Cancel(ctx context.Context)
	Get(ctx context.Context, id string) (*domain.Order, error)
	SetStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

type BackupService interface {
	Export(ctx context.Context) ([]byte, error)
	Restore(ctx context.Context, raw []byte) error
}

// DocumentReader exposes the whole store document for the admin dashboard.
type DocumentReader interface {
	Snapshot() domain.Document
}

// ImportFunc upserts products read from a CSV stream and reports how many were written.
type ImportFunc func(ctx context.Context, r io.Reader) (int, error)

type Deps struct {
	ProductSvc  ProductService
	CategorySvc CategoryService
	OrderSvc    OrderService
	BackupSvc   BackupService
	Documents   DocumentReader
	Import      ImportFunc
	// Ready reports whether the store backend can serve requests.
	Ready func(ctx context.Context) error

	// AdminToken guards /api/admin; empty disables every admin route.
	AdminToken string
	// PublicBaseURL is used for payment callbacks; empty derives it from the request.
	PublicBaseURL string
	AllowOrigins  []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	if deps.ProductSvc == nil || deps.CategorySvc == nil || deps.OrderSvc == nil {
		return nil, errors.New("httpserver: product, category and order services are required")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	corsCfg := corsConfig(deps.AllowOrigins)
	if err := corsCfg.Validate(); err != nil {
		return nil, fmt.Errorf("cors config: %w", err)
	}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Ready))

	h := &handlers{deps: deps, logger: logger}

	api := router.Group("/api")
	api.GET("/data", h.catalog)
	api.POST("/order/create", h.createOrder)
	api.GET("/payment/success", h.paymentSuccess)
	api.GET("/payment/cancel", h.paymentCancel)
	api.GET("/order/:oid", h.getOrder)

	api.POST("/admin/login", h.adminLogin)
	api.GET("/admin/backup", h.backup)

	admin := api.Group("/admin", adminMiddleware(deps.AdminToken))
	admin.GET("/full-data", h.fullData)
	admin.POST("/product", h.saveProduct)
	admin.DELETE("/product/:pid", h.deleteProduct)
	admin.POST("/category", h.saveCategory)
	admin.DELETE("/category/:cid", h.deleteCategory)
	admin.POST("/order-status", h.orderStatus)
	admin.POST("/restore", h.restore)
	admin.POST("/import", h.importCSV)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, adminHeader)
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
