// Package quote holds the quotation model and its keyed, time-limited
// in-memory store.
package quote

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tapiocalabs/quotation-api/internal/pricing"
)

// Quote is a priced quotation identified by its idempotency key. Once stored
// it is immutable; the store owns it until deletion. A quote past ExpiresAt
// can no longer be finalized but stays retrievable until explicitly removed.
type Quote struct {
	ID        string
	Items     []pricing.LineItem
	Discounts []pricing.Discount
	Total     decimal.Decimal
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the quote's validity window has passed at now.
func (q *Quote) Expired(now time.Time) bool {
	return now.After(q.ExpiresAt)
}

// LineInputs re-derives the original order lines from the stored items, used
// to mint a replacement quote when this one has expired.
func (q *Quote) LineInputs() []pricing.LineInput {
	lines := make([]pricing.LineInput, len(q.Items))
	for i, item := range q.Items {
		lines[i] = pricing.LineInput{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return lines
}
