// Package pricing turns validated order lines into priced line items and
// applies the layered discount policy. Every monetary figure is rounded
// half-up to the cent at the point it is computed; intermediate roundings
// compound, so the rounding points must not be moved.
package pricing

import (
	"github.com/shopspring/decimal"
)

// LineInput is a single (product, quantity) entry supplied per request.
type LineInput struct {
	ProductID string
	Quantity  int
}

// LineItem is a priced order line. Total starts equal to Subtotal and is
// decremented by item-level discounts during rule application. Invariant:
// Total = Subtotal - sum(Discounts[].Amount), and Total >= 0.
type LineItem struct {
	ProductID string
	UnitPrice decimal.Decimal
	Quantity  int
	Subtotal  decimal.Decimal
	Total     decimal.Decimal
	Category  string
	Discounts []Discount
}

// Discount records a single applied discount. Basis is the monetary amount
// the percentage or threshold was evaluated against; Amount never exceeds it.
// Metadata carries free-form diagnostic fields (thresholds, quantities).
type Discount struct {
	Code     string
	Name     string
	Basis    decimal.Decimal
	Amount   decimal.Decimal
	Metadata map[string]any
}

// round2 rounds half-up to 2 decimal places.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
