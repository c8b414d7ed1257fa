package pricing

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/tapiocalabs/quotation-api/internal/catalog"
)

// ErrEmptyOrder is returned when the input line set is empty or absent.
var ErrEmptyOrder = errors.New(`O campo "items" é obrigatório e não pode estar vazio.`)

// InvalidItemError indicates a malformed order line. The message echoes the
// offending input so callers can tell which line was rejected.
type InvalidItemError struct {
	ProductID string
	Quantity  int
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf(
		`Item inválido: {"productId":%q,"quantity":%d}. Cada item deve ter "productId" e "quantity" (inteiro positivo).`,
		e.ProductID, e.Quantity,
	)
}

// ProductNotFoundError indicates a line references a product that does not
// exist in the catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Produto com ID '%s' não encontrado.", e.ProductID)
}

// Pricer turns order lines into priced line items using catalog lookups.
type Pricer struct {
	products catalog.Repository
}

// NewPricer creates a Pricer backed by the given catalog repository.
func NewPricer(products catalog.Repository) *Pricer {
	return &Pricer{products: products}
}

// Price validates every line and produces the priced items together with the
// running cart subtotal and total unit quantity. Validation is all-or-nothing:
// the first offending line aborts the whole operation and no partially priced
// result is returned. No discount logic runs here.
func (p *Pricer) Price(ctx context.Context, lines []LineInput) (items []LineItem, cartSubtotal decimal.Decimal, totalQuantity int, err error) {
	if len(lines) == 0 {
		return nil, decimal.Zero, 0, ErrEmptyOrder
	}

	items = make([]LineItem, 0, len(lines))
	cartSubtotal = decimal.Zero

	for _, line := range lines {
		if line.ProductID == "" || line.Quantity <= 0 {
			return nil, decimal.Zero, 0, &InvalidItemError{ProductID: line.ProductID, Quantity: line.Quantity}
		}

		product, err := p.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, decimal.Zero, 0, &ProductNotFoundError{ProductID: line.ProductID}
			}
			return nil, decimal.Zero, 0, errors.Wrapf(err, "get product %s", line.ProductID)
		}

		subtotal := round2(product.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, LineItem{
			ProductID: product.ID,
			UnitPrice: product.UnitPrice,
			Quantity:  line.Quantity,
			Subtotal:  subtotal,
			Total:     subtotal,
			Category:  product.Category,
			Discounts: []Discount{},
		})

		cartSubtotal = round2(cartSubtotal.Add(subtotal))
		totalQuantity += line.Quantity
	}

	return items, cartSubtotal, totalQuantity, nil
}
