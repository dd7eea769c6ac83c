package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "pending_payment"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusCompleted      OrderStatus = "completed"
	StatusCancelled      OrderStatus = "cancelled"
	StatusExpired        OrderStatus = "expired"
)

// ErrInvalidTransition is returned when a status change is not allowed from the current state.
var ErrInvalidTransition = errors.New("invalid status transition")

var transitions = map[OrderStatus][]OrderStatus{
	StatusPendingPayment: {StatusConfirmed, StatusCancelled, StatusExpired},
	StatusConfirmed:      {StatusPreparing, StatusOutForDelivery, StatusCompleted, StatusCancelled},
	StatusPreparing:      {StatusOutForDelivery, StatusCompleted, StatusCancelled},
	StatusOutForDelivery: {StatusCompleted, StatusCancelled},
	StatusCompleted:      nil,
	StatusCancelled:      nil,
	StatusExpired:        nil,
}

// ParseOrderStatus maps a wire value onto the closed set of statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("%w: unknown order status %q", ErrInvalid, s)
	}
	return st, nil
}

func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderLine is the priced snapshot of one cart item. It is never re-priced.
type OrderLine struct {
	ID       string          `json:"id"`
	Name     LocalizedText   `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (l OrderLine) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID               string          `json:"id"`
	Date             Timestamp       `json:"date"`
	Customer         Customer        `json:"customer"`
	Items            []OrderLine     `json:"items"`
	TotalBase        decimal.Decimal `json:"total_omr"`
	TotalSettlement  decimal.Decimal `json:"total_usd"`
	Status           OrderStatus     `json:"status"`
	// LegacyStatus keeps a status outside the known set that Normalize replaced.
	LegacyStatus     string          `json:"legacy_status,omitempty"`
	Paid             bool            `json:"paid"`
	PaymentSessionID string          `json:"paypal_order_id"`
	PaymentCaptureID string          `json:"paypal_capture_id,omitempty"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty"`
}

// Confirm records a successful capture. Only a pending order can be confirmed.
func (o *Order) Confirm(captureID string, at time.Time) error {
	if err := o.transition(StatusConfirmed, at); err != nil {
		return err
	}
	o.Paid = true
	o.PaymentCaptureID = captureID
	return nil
}

// SetStatus applies an operator-driven status change. Confirmation is reserved for capture.
func (o *Order) SetStatus(next OrderStatus, at time.Time) error {
	if next == StatusConfirmed && !o.Paid {
		return fmt.Errorf("%w: %s -> %s requires a captured payment", ErrInvalidTransition, o.Status, next)
	}
	return o.transition(next, at)
}

func (o *Order) transition(next OrderStatus, at time.Time) error {
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	o.Status = next
	ts := at.UTC()
	o.UpdatedAt = &ts
	return nil
}

// Clone returns a deep copy safe to hand outside the store lock.
func (o Order) Clone() Order {
	out := o
	out.Items = append([]OrderLine(nil), o.Items...)
	if o.Customer.Location != nil {
		v := *o.Customer.Location
		out.Customer.Location = &v
	}
	if o.Customer.Notes != nil {
		v := *o.Customer.Notes
		out.Customer.Notes = &v
	}
	if o.UpdatedAt != nil {
		v := *o.UpdatedAt
		out.UpdatedAt = &v
	}
	return out
}
