package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CustomerInfo is the contact data required to initiate a checkout.
type CustomerInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes,omitempty"`
	Country string `json:"country"`
}

// Normalize trims every field and defaults the country to the home country.
func (ci *CustomerInfo) Normalize(homeCountry string) {
	ci.Name = strings.TrimSpace(ci.Name)
	ci.Address = strings.TrimSpace(ci.Address)
	ci.Phone = strings.TrimSpace(ci.Phone)
	ci.Notes = strings.TrimSpace(ci.Notes)
	ci.Country = strings.ToUpper(strings.TrimSpace(ci.Country))
	if ci.Country == "" {
		ci.Country = homeCountry
	}
}

// Complete reports whether name, address and phone are all present.
func (ci CustomerInfo) Complete() bool {
	return ci.Name != "" && ci.Address != "" && ci.Phone != ""
}

// CheckoutRequest is the payload for creating a checkout session.
type CheckoutRequest struct {
	Items      []LineItem   `json:"items" binding:"required"`
	Customer   CustomerInfo `json:"customer"`
	CouponCode string       `json:"coupon_code,omitempty"`
	SuccessURL string       `json:"success_url,omitempty"`
	CancelURL  string       `json:"cancel_url,omitempty"`
}

// OrderItem is a provider-facing line item.
type OrderItem struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// OrderIntent is built fresh per checkout attempt and handed to a provider.
type OrderIntent struct {
	Items      []OrderItem
	Customer   CustomerInfo
	Currency   string
	SuccessURL string
	CancelURL  string
}

// ShippingQuote is a derived shipping cost. A nil Cost means the order is
// international and shipping has to be quoted manually.
type ShippingQuote struct {
	Cost  *decimal.Decimal `json:"cost"`
	Label string           `json:"label"`
}

// Totals is the full pricing breakdown for a cart and destination.
type Totals struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	Discount           decimal.Decimal `json:"discount"`
	DiscountedSubtotal decimal.Decimal `json:"discounted_subtotal"`
	Shipping           ShippingQuote   `json:"shipping"`
	Total              decimal.Decimal `json:"total"`
}
