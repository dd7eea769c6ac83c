package category

import (
	"context"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/store"
)

type storeRepo struct {
	store *store.Store
}

func NewStore(s *store.Store) Repository {
	return &storeRepo{store: s}
}

func (r *storeRepo) List(_ context.Context) ([]domain.Category, error) {
	return r.store.Snapshot().Categories, nil
}

func (r *storeRepo) Upsert(ctx context.Context, c domain.Category) (*domain.Category, error) {
	err := r.store.Update(ctx, func(doc *domain.Document) error {
		for i := range doc.Categories {
			if doc.Categories[i].ID == c.ID {
				doc.Categories[i] = c
				return nil
			}
		}
		doc.Categories = append(doc.Categories, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *storeRepo) Delete(ctx context.Context, id string) error {
	return r.store.Update(ctx, func(doc *domain.Document) error {
		kept := doc.Categories[:0]
		for _, c := range doc.Categories {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		doc.Categories = kept
		return nil
	})
}
