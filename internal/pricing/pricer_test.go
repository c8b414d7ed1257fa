package pricing

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapiocalabs/quotation-api/internal/catalog"
)

type mockCatalog struct {
	byID   map[string]*catalog.Product
	getErr error
}

func (m *mockCatalog) List(_ context.Context) ([]catalog.Product, error) {
	return nil, nil
}

func (m *mockCatalog) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

func newCatalog(products ...catalog.Product) *mockCatalog {
	byID := make(map[string]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return &mockCatalog{byID: byID}
}

func testProduct(id, category, price string) catalog.Product {
	return catalog.Product{
		ID:        id,
		Name:      "Produto " + id,
		UnitPrice: decimal.RequireFromString(price),
		Category:  category,
	}
}

func TestPricer_EmptyLines(t *testing.T) {
	p := NewPricer(newCatalog())

	_, _, _, err := p.Price(context.Background(), nil)
	require.ErrorIs(t, err, ErrEmptyOrder)

	_, _, _, err = p.Price(context.Background(), []LineInput{})
	require.ErrorIs(t, err, ErrEmptyOrder)
}

func TestPricer_InvalidItem(t *testing.T) {
	p := NewPricer(newCatalog(testProduct("p1", "roupas", "10.00")))

	tests := []struct {
		name string
		line LineInput
	}{
		{"zero quantity", LineInput{ProductID: "p1", Quantity: 0}},
		{"negative quantity", LineInput{ProductID: "p1", Quantity: -2}},
		{"empty product id", LineInput{ProductID: "", Quantity: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := p.Price(context.Background(), []LineInput{tt.line})

			var iiErr *InvalidItemError
			require.ErrorAs(t, err, &iiErr)
			assert.Equal(t, tt.line.ProductID, iiErr.ProductID)
			assert.Equal(t, tt.line.Quantity, iiErr.Quantity)
			assert.Contains(t, err.Error(), "Item inválido")
		})
	}
}

func TestPricer_ProductNotFound(t *testing.T) {
	p := NewPricer(newCatalog())

	_, _, _, err := p.Price(context.Background(), []LineInput{{ProductID: "fantasma", Quantity: 1}})

	var pnfErr *ProductNotFoundError
	require.ErrorAs(t, err, &pnfErr)
	assert.Equal(t, "fantasma", pnfErr.ProductID)
}

func TestPricer_FirstOffendingLineAborts(t *testing.T) {
	p := NewPricer(newCatalog(testProduct("p1", "roupas", "10.00")))

	// Invalid quantity on line 2 must win over the missing product on line 3.
	_, _, _, err := p.Price(context.Background(), []LineInput{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p1", Quantity: 0},
		{ProductID: "fantasma", Quantity: 1},
	})

	var iiErr *InvalidItemError
	require.ErrorAs(t, err, &iiErr)
}

func TestPricer_PricesLines(t *testing.T) {
	p := NewPricer(newCatalog(
		testProduct("p1", "roupas", "189.90"),
		testProduct("p2", "acessorios", "59.90"),
	))

	items, cartSubtotal, totalQuantity, err := p.Price(context.Background(), []LineInput{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 3},
	})
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.True(t, decimal.RequireFromString("379.80").Equal(items[0].Subtotal))
	assert.True(t, items[0].Subtotal.Equal(items[0].Total))
	assert.Empty(t, items[0].Discounts)
	assert.Equal(t, "acessorios", items[1].Category)
	assert.True(t, decimal.RequireFromString("179.70").Equal(items[1].Subtotal))

	assert.True(t, decimal.RequireFromString("559.50").Equal(cartSubtotal))
	assert.Equal(t, 5, totalQuantity)

	// Subtotal sum property: cart subtotal equals the sum of item subtotals.
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal)
	}
	assert.True(t, sum.Equal(cartSubtotal))
}

func TestPricer_SubtotalRounding(t *testing.T) {
	// 3 x 33.335 = 100.005, rounds half-up to 100.01.
	p := NewPricer(newCatalog(testProduct("p1", "roupas", "33.335")))

	items, cartSubtotal, _, err := p.Price(context.Background(), []LineInput{
		{ProductID: "p1", Quantity: 3},
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100.01").Equal(items[0].Subtotal))
	assert.True(t, decimal.RequireFromString("100.01").Equal(cartSubtotal))
}

func TestPricer_CatalogFailure(t *testing.T) {
	p := NewPricer(&mockCatalog{getErr: errors.New("catalog unavailable")})

	_, _, _, err := p.Price(context.Background(), []LineInput{{ProductID: "p1", Quantity: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get product p1")
}
