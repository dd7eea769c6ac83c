package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LocalizedText carries the three locales the storefront renders.
type LocalizedText struct {
	FA string `json:"fa" yaml:"fa"`
	EN string `json:"en" yaml:"en"`
	AR string `json:"ar" yaml:"ar"`
}

// In returns the text for locale, falling back to English and then Persian.
func (t LocalizedText) In(locale string) string {
	switch strings.ToLower(locale) {
	case "fa":
		if t.FA != "" {
			return t.FA
		}
	case "ar":
		if t.AR != "" {
			return t.AR
		}
	}
	if t.EN != "" {
		return t.EN
	}
	return t.FA
}

func (t LocalizedText) validate(field string) error {
	if strings.TrimSpace(t.FA) == "" || strings.TrimSpace(t.EN) == "" || strings.TrimSpace(t.AR) == "" {
		return fmt.Errorf("%w: %s requires fa, en and ar", ErrInvalid, field)
	}
	return nil
}

type Product struct {
	ID          string          `json:"id"`
	Name        LocalizedText   `json:"name"`
	Description LocalizedText   `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Discount    int             `json:"discount"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

// Validate checks the catalog invariants of a single product.
func (p Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: product id required", ErrInvalid)
	}
	if err := p.Name.validate("name"); err != nil {
		return err
	}
	if err := p.Description.validate("description"); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalid)
	}
	if p.Discount < 0 || p.Discount > 100 {
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalid)
	}
	return nil
}

// UnitPrice is the catalog price after the product's percentage discount.
func (p Product) UnitPrice() decimal.Decimal {
	if p.Discount == 0 {
		return p.Price
	}
	return p.Price.Mul(decimal.NewFromInt(int64(100 - p.Discount))).Div(decimal.NewFromInt(100))
}
