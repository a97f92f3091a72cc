package services

import (
	"github.com/shopspring/decimal"

	"github.com/Batussaii/BANT3D/models"
)

// HomeCountry is the only country with computable shipping. Everything else
// is quoted manually.
const HomeCountry = "ES"

// Shipping tiers and order thresholds, in EUR.
var (
	FreeShippingThreshold = decimal.NewFromInt(30)
	MidTierThreshold      = decimal.NewFromInt(10)
	MidTierFee            = decimal.RequireFromString("2.95")
	BaseShippingFee       = decimal.RequireFromString("4.95")
	InternationalMinOrder = decimal.NewFromInt(50)
)

// Subtotal sums unit price times quantity over all line items.
func Subtotal(items []models.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Discount returns the coupon discount on the raw subtotal, rounded to
// cents. A nil coupon means no discount.
func Discount(subtotal decimal.Decimal, coupon *models.Coupon) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	return subtotal.Mul(coupon.PercentOff).Round(2)
}

// CalculateShipping derives the shipping quote for a destination. Shipping
// tiers are evaluated against the raw subtotal, pre-discount.
func CalculateShipping(subtotal decimal.Decimal, country string) models.ShippingQuote {
	if country != "" && country != HomeCountry {
		return models.ShippingQuote{Cost: nil, Label: "Se cotiza"}
	}
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		free := decimal.Zero
		return models.ShippingQuote{Cost: &free, Label: "Gratis"}
	}
	if subtotal.GreaterThanOrEqual(MidTierThreshold) {
		fee := MidTierFee
		return models.ShippingQuote{Cost: &fee, Label: "2,95€"}
	}
	fee := BaseShippingFee
	return models.ShippingQuote{Cost: &fee, Label: "4,95€"}
}

// Quote computes the full pricing breakdown. It is pure and deterministic so
// the cart view and the checkout submission always agree on the totals.
func Quote(items []models.LineItem, country string, coupon *models.Coupon) models.Totals {
	subtotal := Subtotal(items)
	discount := Discount(subtotal, coupon)

	discounted := subtotal.Sub(discount)
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}

	shipping := CalculateShipping(subtotal, country)

	total := discounted
	if shipping.Cost != nil {
		total = discounted.Add(*shipping.Cost)
	}

	return models.Totals{
		Subtotal:           subtotal,
		Discount:           discount,
		DiscountedSubtotal: discounted,
		Shipping:           shipping,
		Total:              total,
	}
}
