// Package order drives an order from server-side pricing through payment capture.
package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/payment/paypal"
	"restaurant-orders/internal/pricing"
	orderrepo "restaurant-orders/internal/repository/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyOrder means no cart item resolved to a catalog product.
	ErrEmptyOrder = errors.New("order has no purchasable items")
	// ErrPaymentCreation means the gateway did not open a checkout session; nothing was stored.
	ErrPaymentCreation = errors.New("payment creation failed")
	// ErrPaymentFailed means capture did not succeed; the order stays as it was.
	ErrPaymentFailed = errors.New("payment failed")
	// ErrSessionMismatch means the returned session token does not belong to the order.
	ErrSessionMismatch = errors.New("payment session does not match order")
)

type gateway interface {
	CreateSession(ctx context.Context, total decimal.Decimal, returnURL, cancelURL string) (paypal.Session, error)
	Capture(ctx context.Context, sessionID string) (paypal.CaptureResult, error)
}

type productLister interface {
	List(ctx context.Context) ([]domain.Product, error)
}

type dispatcher interface {
	Dispatch(order domain.Order)
}

type discardDispatcher struct{}

func (discardDispatcher) Dispatch(domain.Order) {}

type Service struct {
	orders   orderrepo.Repository
	products productLister
	pricing  *pricing.Engine
	gateway  gateway
	notifier dispatcher
	logger   *log.Logger
	locks    *keyedMutex

	now   func() time.Time
	newID func() (string, error)
}

func New(orders orderrepo.Repository, products productLister, engine *pricing.Engine, gw gateway, notifier dispatcher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if notifier == nil {
		notifier = discardDispatcher{}
	}
	return &Service{
		orders:   orders,
		products: products,
		pricing:  engine,
		gateway:  gw,
		notifier: notifier,
		logger:   logger,
		locks:    newKeyedMutex(),
		now:      time.Now,
		newID:    newOrderID,
	}
}

// newOrderID returns a UUIDv7: unique and ordered by creation time.
func newOrderID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type CreateInput struct {
	Customer domain.Customer
	Items    []domain.CartItem
	// ReturnURL builds the provider's success redirect for the generated order id.
	ReturnURL func(orderID string) string
	CancelURL string
}

type CreateResult struct {
	Order       domain.Order
	ApprovalURL string
}

func validateCreate(in CreateInput) error {
	c := in.Customer
	required := []struct{ field, value string }{
		{"firstName", c.FirstName},
		{"lastName", c.LastName},
		{"phone", c.Phone},
		{"address", c.Address},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: customer %s required", domain.ErrInvalid, r.field)
		}
	}
	if c.DeliveryType != "" && c.DeliveryType != domain.DeliveryTypeDelivery && c.DeliveryType != domain.DeliveryTypePickup {
		return fmt.Errorf("%w: unknown delivery type %q", domain.ErrInvalid, c.DeliveryType)
	}
	if len(in.Items) == 0 {
		return ErrEmptyOrder
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalid)
		}
	}
	if in.ReturnURL == nil || in.CancelURL == "" {
		return errors.New("order service: callback urls required")
	}
	return nil
}

// Create prices the cart, opens a gateway session and stores the order as pending payment.
// No order is stored unless the session was created.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	quote := s.pricing.Quote(products, in.Items)
	if len(quote.Dropped) > 0 {
		s.logger.Printf("order service: dropped unknown products ids=%v", quote.Dropped)
	}
	if quote.Empty() {
		return nil, ErrEmptyOrder
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("generate order id: %w", err)
	}

	session, err := s.gateway.CreateSession(ctx, quote.TotalSettlement, in.ReturnURL(id), in.CancelURL)
	if err != nil {
		s.logger.Printf("order service: create session order_id=%s total=%s error=%v", id, quote.TotalSettlement.StringFixed(2), err)
		return nil, fmt.Errorf("%w: %w", ErrPaymentCreation, err)
	}

	order := domain.Order{
		ID:               id,
		Date:             domain.NewTimestamp(s.now()),
		Customer:         in.Customer.WithDefaults(),
		Items:            quote.Lines,
		TotalBase:        quote.TotalBase,
		TotalSettlement:  quote.TotalSettlement,
		Status:           domain.StatusPendingPayment,
		Paid:             false,
		PaymentSessionID: session.ID,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Printf("order service: persist order_id=%s session_id=%s error=%v", id, session.ID, err)
		return nil, fmt.Errorf("persist order: %w", err)
	}
	s.logger.Printf("order service: created order_id=%s session_id=%s total=%s items=%d", id, session.ID, quote.TotalBase.String(), len(quote.Lines))
	return &CreateResult{Order: order, ApprovalURL: session.ApprovalURL}, nil
}

// Finalize captures the order's session and confirms it. An already paid order is returned
// as is without another capture. Notification failures never reach the caller.
func (s *Service) Finalize(ctx context.Context, orderID, sessionToken string) (*domain.Order, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	current, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if current.Paid {
		s.logger.Printf("order service: finalize order_id=%s already paid", orderID)
		return current, nil
	}
	if current.Status != domain.StatusPendingPayment {
		return nil, fmt.Errorf("%w: order %s is %s", ErrPaymentFailed, orderID, current.Status)
	}
	if sessionToken == "" || sessionToken != current.PaymentSessionID {
		s.logger.Printf("order service: finalize order_id=%s session mismatch token=%q", orderID, sessionToken)
		return nil, ErrSessionMismatch
	}

	capture, err := s.gateway.Capture(ctx, current.PaymentSessionID)
	if err != nil {
		s.logger.Printf("order service: capture order_id=%s session_id=%s error=%v", orderID, current.PaymentSessionID, err)
		return nil, fmt.Errorf("%w: %w", ErrPaymentFailed, err)
	}

	confirmed, err := s.orders.Update(ctx, orderID, func(o *domain.Order) error {
		return o.Confirm(capture.CaptureID, s.now())
	})
	if err != nil {
		// Funds moved but the order could not be confirmed; the operator must reconcile by hand.
		s.logger.Printf("order service: CAPTURED BUT NOT CONFIRMED order_id=%s capture_id=%s error=%v", orderID, capture.CaptureID, err)
		return nil, fmt.Errorf("confirm order: %w", err)
	}
	s.logger.Printf("order service: confirmed order_id=%s capture_id=%s", orderID, capture.CaptureID)

	s.notifier.Dispatch(*confirmed)
	return confirmed, nil
}

// Cancel records that the customer abandoned checkout. The order is left as it is.
func (s *Service) Cancel(_ context.Context) {
	s.logger.Printf("order service: checkout cancelled by customer")
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// SetStatus applies an operator status change within the allowed transitions.
func (s *Service) SetStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrInvalid, status)
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	return s.orders.Update(ctx, id, func(o *domain.Order) error {
		return o.SetStatus(status, s.now())
	})
}

// ExpirePending moves orders still awaiting payment after maxAge to expired.
func (s *Service) ExpirePending(ctx context.Context, maxAge time.Duration) (int, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := s.now().Add(-maxAge)
	expired := 0
	for _, o := range orders {
		if o.Status != domain.StatusPendingPayment || !o.Date.Before(cutoff) {
			continue
		}
		if err := s.expireOne(ctx, o.ID, cutoff); err != nil {
			s.logger.Printf("order service: expire order_id=%s error=%v", o.ID, err)
			continue
		}
		expired++
	}
	if expired > 0 {
		s.logger.Printf("order service: expired pending orders count=%d", expired)
	}
	return expired, nil
}

func (s *Service) expireOne(ctx context.Context, id string, cutoff time.Time) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	_, err := s.orders.Update(ctx, id, func(o *domain.Order) error {
		if o.Status != domain.StatusPendingPayment || o.Paid || !o.Date.Before(cutoff) {
			return errSkip
		}
		return o.SetStatus(domain.StatusExpired, s.now())
	})
	if errors.Is(err, errSkip) {
		return nil
	}
	return err
}

var errSkip = errors.New("skip")
