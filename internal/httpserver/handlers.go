package httpserver

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/service/backup"
	ordersvc "restaurant-orders/internal/service/order"
	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 10 << 20

type handlers struct {
	deps   Deps
	logger *log.Logger
}

type createOrderRequest struct {
	Customer domain.Customer   `json:"customer"`
	Items    []domain.CartItem `json:"items"`
}

type loginRequest struct {
	Token string `json:"token"`
}

type orderStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (h *handlers) catalog(c *gin.Context) {
	ctx := c.Request.Context()
	products, err := h.deps.ProductSvc.List(ctx)
	if err != nil {
		h.fail(c, "list products", err)
		return
	}
	categories, err := h.deps.CategorySvc.List(ctx)
	if err != nil {
		h.fail(c, "list categories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": nonNil(products), "categories": nonNil(categories)})
}

func (h *handlers) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	base := h.baseURL(c)
	res, err := h.deps.OrderSvc.Create(c.Request.Context(), ordersvc.CreateInput{
		Customer: req.Customer,
		Items:    req.Items,
		ReturnURL: func(orderID string) string {
			return base + "/api/payment/success?oid=" + url.QueryEscape(orderID)
		},
		CancelURL: base + "/api/payment/cancel",
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"approval_url": res.ApprovalURL})
	case errors.Is(err, ordersvc.ErrEmptyOrder), errors.Is(err, domain.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ordersvc.ErrPaymentCreation):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment creation failed"})
	default:
		h.fail(c, "create order", err)
	}
}

func (h *handlers) paymentSuccess(c *gin.Context) {
	oid := c.Query("oid")
	_, err := h.deps.OrderSvc.Finalize(c.Request.Context(), oid, c.Query("token"))
	switch {
	case err == nil:
		c.Redirect(http.StatusTemporaryRedirect, "/success?oid="+url.QueryEscape(oid))
	case errors.Is(err, domain.ErrNotFound):
		c.Redirect(http.StatusTemporaryRedirect, "/?error=order_not_found")
	default:
		h.logger.Printf("http: finalize order_id=%s error=%v", oid, err)
		c.Redirect(http.StatusTemporaryRedirect, "/?error=payment_failed")
	}
}

func (h *handlers) paymentCancel(c *gin.Context) {
	h.deps.OrderSvc.Cancel(c.Request.Context())
	c.Redirect(http.StatusTemporaryRedirect, "/?error=payment_cancelled")
}

func (h *handlers) getOrder(c *gin.Context) {
	o, err := h.deps.OrderSvc.Get(c.Request.Context(), c.Param("oid"))
	if err != nil {
		h.fail(c, "get order", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) adminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || !tokenMatches(h.deps.AdminToken, req.Token) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *handlers) fullData(c *gin.Context) {
	if h.deps.Documents == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, h.deps.Documents.Snapshot())
}

func (h *handlers) saveProduct(c *gin.Context) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product"})
		return
	}
	if _, err := h.deps.ProductSvc.Upsert(c.Request.Context(), p); err != nil {
		h.fail(c, "save product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *handlers) deleteProduct(c *gin.Context) {
	if err := h.deps.ProductSvc.Delete(c.Request.Context(), c.Param("pid")); err != nil {
		h.fail(c, "delete product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *handlers) saveCategory(c *gin.Context) {
	var cat domain.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}
	if _, err := h.deps.CategorySvc.Upsert(c.Request.Context(), cat); err != nil {
		h.fail(c, "save category", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *handlers) deleteCategory(c *gin.Context) {
	if err := h.deps.CategorySvc.Delete(c.Request.Context(), c.Param("cid")); err != nil {
		h.fail(c, "delete category", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *handlers) orderStatus(c *gin.Context) {
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and status required"})
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.deps.OrderSvc.SetStatus(c.Request.Context(), req.ID, status); err != nil {
		h.fail(c, "set order status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *handlers) backup(c *gin.Context) {
	if !tokenMatches(h.deps.AdminToken, c.Query("token")) {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid admin token"})
		return
	}
	if h.deps.BackupSvc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backup unavailable"})
		return
	}
	raw, err := h.deps.BackupSvc.Export(c.Request.Context())
	if err != nil {
		h.fail(c, "export backup", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="backup.json"`)
	c.Data(http.StatusOK, "application/json", raw)
}

func (h *handlers) restore(c *gin.Context) {
	if h.deps.BackupSvc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backup unavailable"})
		return
	}
	raw, err := readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid backup file"})
		return
	}
	if err := h.deps.BackupSvc.Restore(c.Request.Context(), raw); err != nil {
		if errors.Is(err, backup.ErrInvalidBackup) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid backup file"})
			return
		}
		h.fail(c, "restore backup", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *handlers) importCSV(c *gin.Context) {
	if h.deps.Import == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "import unavailable"})
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file unreadable"})
		return
	}
	defer f.Close()

	count, err := h.deps.Import(c.Request.Context(), io.LimitReader(f, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "imported": count})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "imported": count})
}

// fail maps service errors to status codes. Unexpected errors are logged and hidden from the client.
func (h *handlers) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrInvalid), errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Printf("http: %s error=%v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// baseURL prefers the configured public URL and otherwise rebuilds it from the request.
func (h *handlers) baseURL(c *gin.Context) string {
	if h.deps.PublicBaseURL != "" {
		return h.deps.PublicBaseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if p := c.GetHeader("X-Forwarded-Proto"); p != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(p, ",")[0]))
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}

func readUpload(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxUploadBytes))
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
