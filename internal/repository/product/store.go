package product

import (
	"context"
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

func (r *storeRepo) List(_ context.Context) ([]domain.Product, error) {
	doc := r.store.Snapshot()
	return doc.Products, nil
}

func (r *storeRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	doc := r.store.Snapshot()
	for i := range doc.Products {
		if doc.Products[i].ID == id {
			p := doc.Products[i]
			return &p, nil
		}
	}
	r.logger.Printf("product repo: get id=%s not found", id)
	return nil, domain.ErrNotFound
}

// Upsert replaces the product with the same id in place or appends a new one.
func (r *storeRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	var created bool
	err := r.store.Update(ctx, func(doc *domain.Document) error {
		for i := range doc.Products {
			if doc.Products[i].ID == product.ID {
				doc.Products[i] = product
				return nil
			}
		}
		doc.Products = append(doc.Products, product)
		created = true
		return nil
	})
	if err != nil {
		r.logger.Printf("product repo: upsert id=%s error=%v", product.ID, err)
		return nil, err
	}
	r.logger.Printf("product repo: upserted id=%s created=%t", product.ID, created)
	return &product, nil
}

func (r *storeRepo) Delete(ctx context.Context, id string) error {
	var removed int
	err := r.store.Update(ctx, func(doc *domain.Document) error {
		kept := doc.Products[:0]
		for _, p := range doc.Products {
			if p.ID == id {
				removed++
				continue
			}
			kept = append(kept, p)
		}
		doc.Products = kept
		return nil
	})
	if err != nil {
		return err
	}
	r.logger.Printf("product repo: delete id=%s removed=%d", id, removed)
	return nil
}
