package order

import (
	"context"
	"fmt"
	"io"
	"log"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/store"
)

type storeRepo struct {
	store  *store.Store
	logger *log.Logger
}

func NewStore(s *store.Store, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &storeRepo{store: s, logger: logger}
}

func (r *storeRepo) Create(ctx context.Context, o domain.Order) error {
	err := r.store.Update(ctx, func(doc *domain.Document) error {
		for _, existing := range doc.Orders {
			if existing.ID == o.ID {
				return fmt.Errorf("order repo: duplicate id %s", o.ID)
			}
		}
		doc.Orders = append(doc.Orders, o.Clone())
		return nil
	})
	if err != nil {
		r.logger.Printf("order repo: create id=%s error=%v", o.ID, err)
		return err
	}
	r.logger.Printf("order repo: created id=%s status=%s", o.ID, o.Status)
	return nil
}

func (r *storeRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	doc := r.store.Snapshot()
	for i := range doc.Orders {
		if doc.Orders[i].ID == id {
			o := doc.Orders[i]
			return &o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *storeRepo) List(_ context.Context) ([]domain.Order, error) {
	return r.store.Snapshot().Orders, nil
}

func (r *storeRepo) Update(ctx context.Context, id string, fn func(o *domain.Order) error) (*domain.Order, error) {
	var out domain.Order
	err := r.store.Update(ctx, func(doc *domain.Document) error {
		for i := range doc.Orders {
			if doc.Orders[i].ID != id {
				continue
			}
			if err := fn(&doc.Orders[i]); err != nil {
				return err
			}
			out = doc.Orders[i].Clone()
			return nil
		}
		return domain.ErrNotFound
	})
	if err != nil {
		r.logger.Printf("order repo: update id=%s error=%v", id, err)
		return nil, err
	}
	r.logger.Printf("order repo: updated id=%s status=%s paid=%t", id, out.Status, out.Paid)
	return &out, nil
}
