package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/tapiocalabs/quotation-api/internal/order"
	"github.com/tapiocalabs/quotation-api/internal/pricing"
)

// CreateQuote handles POST /v1/orders/quote: it prices the submitted lines,
// applies the discount policy and responds 201 with the stored quotation.
func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.writeError(w, r, errMalformedBody)
		return
	}

	lines, err := decodeQuoteRequest(body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q, err := h.orders.CreateQuote(r.Context(), lines)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, func(e *jx.Encoder) {
		encodeQuote(e, q)
	})
}

// FinalizeOrder handles POST /v1/orders: it consumes the referenced quote
// exactly once and responds 200 with the finalized order.
func (h *Handler) FinalizeOrder(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.writeError(w, r, errMalformedBody)
		return
	}

	key, err := decodeFinalizeRequest(body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	o, err := h.orders.FinalizeOrder(r.Context(), key)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("message")
		e.Str("Pedido finalizado com sucesso!")
		e.FieldStart("orderId")
		e.Str(o.OrderID)
		e.FieldStart("order")
		encodeQuote(e, &o.Quote)
		e.ObjEnd()
	})
}

// writeError maps domain errors to the public error payload and status code.
// Anything unrecognized is a 500 with a generic message; internal detail is
// logged, never leaked.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := 0
	var extra func(e *jx.Encoder)

	var (
		invalidErr  *pricing.InvalidItemError
		notFoundErr *pricing.ProductNotFoundError
		expiredErr  *order.QuoteExpiredError
	)
	switch {
	case errors.Is(err, pricing.ErrEmptyOrder),
		errors.Is(err, order.ErrMissingKey),
		errors.Is(err, errMalformedBody),
		errors.As(err, &invalidErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &notFoundErr),
		errors.Is(err, order.ErrQuoteNotFound):
		status = http.StatusNotFound
	case errors.As(err, &expiredErr):
		status = http.StatusUnprocessableEntity
		extra = func(e *jx.Encoder) {
			e.FieldStart("newQuote")
			encodeQuote(e, expiredErr.NewQuote)
		}
	}

	if status == 0 {
		zctx.From(r.Context()).Error("Unhandled error", zap.Error(err))
		writeJSON(w, r, http.StatusInternalServerError, func(e *jx.Encoder) {
			e.ObjStart()
			e.FieldStart("status")
			e.Str("error")
			e.FieldStart("message")
			e.Str("Internal server error")
			e.ObjEnd()
		})
		return
	}

	writeJSON(w, r, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("message")
		e.Str(err.Error())
		if extra != nil {
			extra(e)
		}
		e.ObjEnd()
	})
}
