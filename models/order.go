package models

import "github.com/shopspring/decimal"

// PaidOrder is a completed order as reported back by a payment provider.
type PaidOrder struct {
	ProviderID string          `json:"provider_id"`
	Currency   string          `json:"currency"`
	Total      decimal.Decimal `json:"total"`
	Items      []OrderItem     `json:"items"`
}
