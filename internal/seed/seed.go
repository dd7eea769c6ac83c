package seed

import (
	"context"
	_ "embed"
	"fmt"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/store"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type productSeed struct {
	ID          string               `yaml:"id"`
	Name        domain.LocalizedText `yaml:"name"`
	Description domain.LocalizedText `yaml:"description"`
	Price       string               `yaml:"price"`
	Discount    int                  `yaml:"discount"`
	Category    string               `yaml:"category"`
	Image       string               `yaml:"image"`
}

type catalogSeed struct {
	Categories []domain.Category `yaml:"categories"`
	Products   []productSeed     `yaml:"products"`
}

// Catalog is the decoded starter menu.
type Catalog struct {
	Categories []domain.Category
	Products   []domain.Product
}

// Default decodes the embedded starter menu.
func Default() (Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a YAML catalog and validates every entry.
func Parse(raw []byte) (Catalog, error) {
	var in catalogSeed
	if err := yaml.Unmarshal(raw, &in); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	out := Catalog{Categories: in.Categories}
	for _, c := range out.Categories {
		if err := c.Validate(); err != nil {
			return Catalog{}, fmt.Errorf("category %s: %w", c.ID, err)
		}
	}
	for _, ps := range in.Products {
		price, err := decimal.NewFromString(ps.Price)
		if err != nil {
			return Catalog{}, fmt.Errorf("product %s price: %w", ps.ID, err)
		}
		p := domain.Product{
			ID:          ps.ID,
			Name:        ps.Name,
			Description: ps.Description,
			Price:       price,
			Discount:    ps.Discount,
			Category:    ps.Category,
			Image:       ps.Image,
		}
		if err := p.Validate(); err != nil {
			return Catalog{}, fmt.Errorf("product %s: %w", ps.ID, err)
		}
		out.Products = append(out.Products, p)
	}
	return out, nil
}

// Apply fills empty categories and products with the catalog. Non-empty collections are left alone,
// so it is safe to run on every start.
func Apply(ctx context.Context, s *store.Store, catalog Catalog) (bool, error) {
	changed := false
	err := s.Update(ctx, func(doc *domain.Document) error {
		if len(doc.Categories) == 0 && len(catalog.Categories) > 0 {
			doc.Categories = append([]domain.Category(nil), catalog.Categories...)
			changed = true
		}
		if len(doc.Products) == 0 && len(catalog.Products) > 0 {
			doc.Products = append([]domain.Product(nil), catalog.Products...)
			changed = true
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}
