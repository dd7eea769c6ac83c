// Package pricing computes authoritative order totals from catalog state.
package pricing

import (
	"restaurant-orders/internal/domain"
	"github.com/shopspring/decimal"
)

// Quote is the server-side price of a cart.
type Quote struct {
	Lines           []domain.OrderLine
	TotalBase       decimal.Decimal
	TotalSettlement decimal.Decimal
	// Dropped lists cart ids that did not resolve to a catalog product.
	Dropped []string
}

func (q Quote) Empty() bool {
	return len(q.Lines) == 0
}

// Engine prices carts in the base currency and converts with a fixed rate.
type Engine struct {
	rate decimal.Decimal
}

func New(rate decimal.Decimal) *Engine {
	return &Engine{rate: rate}
}

func (e *Engine) Rate() decimal.Decimal {
	return e.rate
}

// Quote resolves each cart item against products. Unknown ids are skipped, not rejected.
func (e *Engine) Quote(products []domain.Product, cart []domain.CartItem) Quote {
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	q := Quote{Lines: make([]domain.OrderLine, 0, len(cart)), TotalBase: decimal.Zero}
	for _, item := range cart {
		p, ok := byID[item.ID]
		if !ok {
			q.Dropped = append(q.Dropped, item.ID)
			continue
		}
		line := domain.OrderLine{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.UnitPrice(),
			Quantity: item.Quantity,
		}
		q.Lines = append(q.Lines, line)
		q.TotalBase = q.TotalBase.Add(line.Total())
	}
	q.TotalSettlement = e.Convert(q.TotalBase)
	return q
}

// Convert maps a base-currency amount into the settlement currency.
func (e *Engine) Convert(base decimal.Decimal) decimal.Decimal {
	return base.Mul(e.rate)
}
