package handler

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tapiocalabs/quotation-api/internal/order"
	"github.com/tapiocalabs/quotation-api/internal/pricing"
	"github.com/tapiocalabs/quotation-api/internal/quote"
)

// maxBodySize caps request bodies; quote payloads are tiny.
const maxBodySize = 1 << 20

var errMalformedBody = errors.New("Corpo da requisição inválido.")

// readBody drains the request body up to maxBodySize.
func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, maxBodySize))
}

// decodeQuoteRequest parses {"items":[{"productId":..., "quantity":...}]}.
// Unknown fields are skipped. A non-integer quantity is reported as an
// invalid item (truncated in the echo) rather than a parse failure, matching
// the pricer's validation contract.
func decodeQuoteRequest(data []byte) ([]pricing.LineInput, error) {
	var (
		lines      []pricing.LineInput
		invalidErr error
	)

	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "items" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			var line pricing.LineInput
			if err := d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "productId":
					v, err := d.Str()
					if err != nil {
						return err
					}
					line.ProductID = v
					return nil
				case "quantity":
					n, err := d.Num()
					if err != nil {
						return err
					}
					v, err := n.Int64()
					if err != nil {
						// Fractional quantity: not a positive integer.
						f, ferr := n.Float64()
						if ferr != nil {
							return ferr
						}
						if invalidErr == nil {
							invalidErr = &pricing.InvalidItemError{ProductID: line.ProductID, Quantity: int(f)}
						}
						return nil
					}
					line.Quantity = int(v)
					return nil
				default:
					return d.Skip()
				}
			}); err != nil {
				return err
			}
			lines = append(lines, line)
			return nil
		})
	}); err != nil {
		return nil, errMalformedBody
	}
	if invalidErr != nil {
		return nil, invalidErr
	}
	return lines, nil
}

// decodeFinalizeRequest parses {"idempotencyKey": "..."}.
func decodeFinalizeRequest(data []byte) (string, error) {
	var key string
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, k string) error {
		if k != "idempotencyKey" {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return err
		}
		key = v
		return nil
	}); err != nil {
		return "", errMalformedBody
	}
	return key, nil
}

// writeJSON encodes the response built by fill and writes it with the given
// status code.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, fill func(e *jx.Encoder)) {
	var e jx.Encoder
	fill(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(e.Bytes()); err != nil {
		zctx.From(r.Context()).Debug("Write response", zap.Error(err))
	}
}

// encodeDecimal writes a monetary value as a plain JSON number, preserving
// the decimal representation exactly (no float round trip).
func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}

func encodeQuote(e *jx.Encoder, q *quote.Quote) {
	e.ObjStart()
	e.FieldStart("idempotencyKey")
	e.Str(q.ID)
	e.FieldStart("expiresAt")
	e.Str(q.ExpiresAt.UTC().Format(time.RFC3339))
	e.FieldStart("currency")
	e.Str(order.Currency)
	e.FieldStart("items")
	e.ArrStart()
	for i := range q.Items {
		encodeItem(e, &q.Items[i])
	}
	e.ArrEnd()
	e.FieldStart("discounts")
	e.ArrStart()
	for i := range q.Discounts {
		encodeDiscount(e, &q.Discounts[i])
	}
	e.ArrEnd()
	e.FieldStart("total")
	encodeDecimal(e, q.Total)
	e.ObjEnd()
}

// encodeItem writes the public view of a line item. The internal category
// field is not exposed.
func encodeItem(e *jx.Encoder, item *pricing.LineItem) {
	e.ObjStart()
	e.FieldStart("productId")
	e.Str(item.ProductID)
	e.FieldStart("unitPrice")
	encodeDecimal(e, item.UnitPrice)
	e.FieldStart("quantity")
	e.Int(item.Quantity)
	e.FieldStart("subtotal")
	encodeDecimal(e, item.Subtotal)
	e.FieldStart("itemDiscounts")
	e.ArrStart()
	for i := range item.Discounts {
		encodeDiscount(e, &item.Discounts[i])
	}
	e.ArrEnd()
	e.FieldStart("total")
	encodeDecimal(e, item.Total)
	e.ObjEnd()
}

func encodeDiscount(e *jx.Encoder, d *pricing.Discount) {
	e.ObjStart()
	e.FieldStart("code")
	e.Str(d.Code)
	e.FieldStart("name")
	e.Str(d.Name)
	e.FieldStart("basis")
	encodeDecimal(e, d.Basis)
	e.FieldStart("amount")
	encodeDecimal(e, d.Amount)
	e.FieldStart("metadata")
	encodeMetadata(e, d.Metadata)
	e.ObjEnd()
}

// encodeMetadata writes the diagnostic fields in key order so payloads are
// deterministic.
func encodeMetadata(e *jx.Encoder, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e.ObjStart()
	for _, k := range keys {
		e.FieldStart(k)
		switch v := m[k].(type) {
		case string:
			e.Str(v)
		case int:
			e.Int(v)
		case int64:
			e.Int64(v)
		case decimal.Decimal:
			encodeDecimal(e, v)
		default:
			e.Str(fmt.Sprint(v))
		}
	}
	e.ObjEnd()
}
