package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one distinct product+variant+color selection in the cart.
type LineItem struct {
	Key       string          `json:"key"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Variant   string          `json:"variant,omitempty"`
	Colors    []string        `json:"colors,omitempty"`
}

// ItemKey builds the cart identity key. Two selections are the same line
// only when product, variant and the exact ordered color list match.
func ItemKey(productID, variant string, colors []string) string {
	return productID + "::" + variant + "::" + strings.Join(colors, "|")
}

// DisplayName returns the item name with the selected variant appended,
// matching how line items are presented to the payment provider.
func (li LineItem) DisplayName() string {
	if li.Variant != "" {
		return li.Name + " (" + li.Variant + ")"
	}
	return li.Name
}

// ColorLabel returns the human-readable color selection, empty when none.
func (li LineItem) ColorLabel() string {
	if len(li.Colors) == 0 {
		return ""
	}
	return "Colores: " + strings.Join(li.Colors, ", ")
}
