package models

import "github.com/shopspring/decimal"

// Coupon is a percentage discount applied to the pre-shipping subtotal.
type Coupon struct {
	Code       string          `json:"code"`
	PercentOff decimal.Decimal `json:"percent_off"` // fraction in [0, 1]
}
