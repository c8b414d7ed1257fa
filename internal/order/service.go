// Package order composes pricing, discounting and the quote store into the
// two public operations: create-quote and finalize-order.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/tapiocalabs/quotation-api/internal/pricing"
	"github.com/tapiocalabs/quotation-api/internal/quote"
)

// Currency is the only currency the engine quotes in.
const Currency = "BRL"

// DefaultValidity is the quotation validity window.
const DefaultValidity = 15 * time.Minute

// Sentinel errors for the finalize operation.
var (
	ErrMissingKey    = errors.New("A chave de idempotência (idempotencyKey) é obrigatória.")
	ErrQuoteNotFound = errors.New("Cotação não encontrada. Por favor, gere uma nova cotação.")
)

// QuoteExpiredError signals that the referenced quote's window has passed.
// It carries the freshly minted replacement quote, recomputed from the same
// line inputs; callers should retry the finalize with NewQuote.ID.
type QuoteExpiredError struct {
	NewQuote *quote.Quote
}

func (e *QuoteExpiredError) Error() string {
	return fmt.Sprintf("Cotação expirada. Uma nova cotação foi gerada com o ID: %s", e.NewQuote.ID)
}

// FinalizedOrder is the terminal result of a successful finalize: a fresh
// order identifier plus a snapshot of the consumed quote. It is never stored
// by the engine; ownership passes to the caller.
type FinalizedOrder struct {
	OrderID string
	Quote   quote.Quote
}

// QuoteStore is the slice of the quote store the orchestrator needs. Consume
// must be atomic per key (see quote.MemStore).
type QuoteStore interface {
	Put(q *quote.Quote)
	Consume(id string, now time.Time) (*quote.Quote, quote.ConsumeState)
}

// Service owns idempotency-key generation and the quote state transitions.
type Service struct {
	pricer   *pricing.Pricer
	engine   *pricing.Engine
	quotes   QuoteStore
	validity time.Duration

	now   func() time.Time
	newID func() string
}

// NewService creates an order Service. A non-positive validity falls back to
// DefaultValidity.
func NewService(pricer *pricing.Pricer, engine *pricing.Engine, quotes QuoteStore, validity time.Duration) *Service {
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Service{
		pricer:   pricer,
		engine:   engine,
		quotes:   quotes,
		validity: validity,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CreateQuote prices the given lines, applies the discount policy, and stores
// the resulting quote under a fresh idempotency key. Nothing is stored when
// any line fails validation or lookup.
func (s *Service) CreateQuote(ctx context.Context, lines []pricing.LineInput) (*quote.Quote, error) {
	items, cartSubtotal, totalQuantity, err := s.pricer.Price(ctx, lines)
	if err != nil {
		return nil, err
	}

	cartDiscounts, finalTotal := s.engine.Apply(items, cartSubtotal, totalQuantity)

	now := s.now()
	q := &quote.Quote{
		ID:        s.newID(),
		Items:     items,
		Discounts: cartDiscounts,
		Total:     finalTotal,
		CreatedAt: now,
		ExpiresAt: now.Add(s.validity),
	}
	s.quotes.Put(q)

	return q, nil
}

// FinalizeOrder consumes the quote stored under key exactly once. A still
// valid quote is deleted from the store and returned as a FinalizedOrder with
// a fresh order id; a second call with the same key fails with
// ErrQuoteNotFound. An expired quote is left in the store and a replacement
// is minted from its original line inputs, returned inside QuoteExpiredError.
func (s *Service) FinalizeOrder(ctx context.Context, key string) (*FinalizedOrder, error) {
	if key == "" {
		return nil, ErrMissingKey
	}

	q, state := s.quotes.Consume(key, s.now())
	switch state {
	case quote.ConsumeNotFound:
		return nil, ErrQuoteNotFound
	case quote.ConsumeExpired:
		replacement, err := s.CreateQuote(ctx, q.LineInputs())
		if err != nil {
			return nil, errors.Wrap(err, "requote expired quote")
		}
		return nil, &QuoteExpiredError{NewQuote: replacement}
	}

	return &FinalizedOrder{
		OrderID: s.newID(),
		Quote:   *q,
	}, nil
}
