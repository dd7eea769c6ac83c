package order

import (
	"context"

	"restaurant-orders/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, o domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	// Update runs fn on the stored order atomically; an error from fn discards the change.
	Update(ctx context.Context, id string, fn func(o *domain.Order) error) (*domain.Order, error)
}
