package pricing

import (
	"testing"

	"restaurant-orders/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func catalog() []domain.Product {
	return []domain.Product{
		{ID: "P1", Name: domain.LocalizedText{EN: "Steak"}, Price: d("10.0"), Discount: 10},
		{ID: "P2", Name: domain.LocalizedText{EN: "Soup"}, Price: d("3.25")},
		{ID: "P3", Name: domain.LocalizedText{EN: "Cake"}, Price: d("15.5"), Discount: 10},
	}
}

func TestQuoteExample(t *testing.T) {
	e := New(d("2.6"))
	q := e.Quote(catalog(), []domain.CartItem{{ID: "P1", Quantity: 2}})

	require.Len(t, q.Lines, 1)
	assert.True(t, q.Lines[0].Price.Equal(d("9")), "unit %s", q.Lines[0].Price)
	assert.True(t, q.TotalBase.Equal(d("18")), "base %s", q.TotalBase)
	assert.True(t, q.TotalSettlement.Equal(d("46.8")), "settlement %s", q.TotalSettlement)
	assert.Equal(t, "Steak", q.Lines[0].Name.EN)
}

func TestQuoteSumsDiscountedLines(t *testing.T) {
	e := New(d("2.6"))
	cart := []domain.CartItem{
		{ID: "P1", Quantity: 1},
		{ID: "P2", Quantity: 3},
		{ID: "P3", Quantity: 2},
	}
	q := e.Quote(catalog(), cart)

	// 9 + 9.75 + 27.9
	want := d("46.65")
	assert.True(t, q.TotalBase.Equal(want), "base %s", q.TotalBase)
	assert.True(t, q.TotalSettlement.Equal(want.Mul(d("2.6"))), "settlement %s", q.TotalSettlement)
	assert.Empty(t, q.Dropped)
}

func TestQuoteDropsUnknownProducts(t *testing.T) {
	e := New(d("2.6"))
	q := e.Quote(catalog(), []domain.CartItem{
		{ID: "nope", Quantity: 4},
		{ID: "P2", Quantity: 1},
	})

	require.Len(t, q.Lines, 1)
	assert.Equal(t, "P2", q.Lines[0].ID)
	assert.Equal(t, []string{"nope"}, q.Dropped)
	assert.True(t, q.TotalBase.Equal(d("3.25")))
}

func TestQuoteEmptyCartIsZero(t *testing.T) {
	e := New(d("2.6"))
	q := e.Quote(catalog(), []domain.CartItem{{ID: "ghost", Quantity: 1}})

	assert.True(t, q.Empty())
	assert.True(t, q.TotalBase.IsZero())
	assert.True(t, q.TotalSettlement.IsZero())
}

func TestQuoteIgnoresLaterCatalogChanges(t *testing.T) {
	e := New(d("1"))
	products := catalog()
	q := e.Quote(products, []domain.CartItem{{ID: "P2", Quantity: 1}})

	products[1].Price = d("100")
	assert.True(t, q.Lines[0].Price.Equal(d("3.25")))
}
