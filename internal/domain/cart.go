package domain

// CartItem is a product reference submitted by the storefront. Prices are never taken from it.
type CartItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}
