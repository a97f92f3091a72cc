package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Batussaii/BANT3D/models"
)

// activeCoupons are the codes currently accepted at checkout.
var activeCoupons = map[string]models.Coupon{
	"BANT20": {Code: "BANT20", PercentOff: decimal.RequireFromString("0.2")},
}

// NormalizeCouponCode trims and uppercases a code. Matching is
// case-insensitive.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LookupCoupon resolves a code to an active coupon.
func LookupCoupon(code string) (*models.Coupon, bool) {
	coupon, ok := activeCoupons[NormalizeCouponCode(code)]
	if !ok {
		return nil, false
	}
	return &coupon, true
}
