package domain

const (
	DeliveryTypeDelivery = "delivery"
	DeliveryTypePickup   = "pickup"

	ContactMethodWhatsApp = "whatsapp"
)

// Customer is the contact snapshot embedded in every order.
type Customer struct {
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	Phone         string  `json:"phone"`
	Address       string  `json:"address"`
	Location      *string `json:"location"`
	Notes         *string `json:"notes"`
	ContactMethod string  `json:"contactMethod"`
	DeliveryType  string  `json:"deliveryType"`
}

// WithDefaults fills the tags the storefront may omit.
func (c Customer) WithDefaults() Customer {
	if c.ContactMethod == "" {
		c.ContactMethod = ContactMethodWhatsApp
	}
	if c.DeliveryType == "" {
		c.DeliveryType = DeliveryTypeDelivery
	}
	return c
}

func (c Customer) IsPickup() bool {
	return c.DeliveryType == DeliveryTypePickup
}
