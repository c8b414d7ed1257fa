package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product categories present in the catalog. The set is open: unknown
// categories are carried through untouched by the pricing rules.
const (
	CategoryClothing    = "roupas"
	CategoryUnderwear   = "intimo"
	CategoryAccessories = "acessorios"
)

// Product represents an immutable catalog record. Records are loaded once at
// startup and never mutated afterwards.
type Product struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	Category  string
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
}
