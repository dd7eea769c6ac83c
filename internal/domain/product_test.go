package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() Product {
	return Product{
		ID:          "p1",
		Name:        LocalizedText{FA: "استیک", EN: "Steak", AR: "ستيك"},
		Description: LocalizedText{FA: "گوساله", EN: "Beef", AR: "لحم"},
		Price:       decimal.RequireFromString("15.5"),
		Discount:    10,
		Category:    "2",
	}
}

func TestProductUnitPrice(t *testing.T) {
	p := validProduct()
	assert.True(t, p.UnitPrice().Equal(decimal.RequireFromString("13.95")), "got %s", p.UnitPrice())

	p.Discount = 0
	assert.True(t, p.UnitPrice().Equal(p.Price))

	p.Discount = 100
	assert.True(t, p.UnitPrice().IsZero())
}

func TestProductValidate(t *testing.T) {
	require.NoError(t, validProduct().Validate())

	p := validProduct()
	p.Discount = 101
	require.ErrorIs(t, p.Validate(), ErrInvalid)

	p = validProduct()
	p.Price = decimal.NewFromInt(-1)
	require.ErrorIs(t, p.Validate(), ErrInvalid)

	p = validProduct()
	p.Name.AR = " "
	require.ErrorIs(t, p.Validate(), ErrInvalid)

	p = validProduct()
	p.ID = ""
	require.ErrorIs(t, p.Validate(), ErrInvalid)
}

func TestLocalizedTextFallback(t *testing.T) {
	txt := LocalizedText{EN: "Steak"}
	assert.Equal(t, "Steak", txt.In("fa"))
	assert.Equal(t, "Steak", txt.In("ar"))
	assert.Equal(t, "استیک", LocalizedText{FA: "استیک", EN: "Steak"}.In("FA"))
}
