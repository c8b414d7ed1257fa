package catalog

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/tapiocalabs/quotation-api/db"
)

var _ Repository = (*StaticRepository)(nil)

// StaticRepository serves the catalog from an in-memory snapshot parsed once
// at construction. It is the default catalog source when no database is
// configured. Lookups are read-only and safe for concurrent use.
type StaticRepository struct {
	byID    map[string]Product
	ordered []Product
}

type productJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

// NewStaticRepository parses the given products JSON into a repository.
func NewStaticRepository(data []byte) (*StaticRepository, error) {
	var raw []productJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse products JSON")
	}
	if len(raw) == 0 {
		return nil, errors.New("product catalog is empty")
	}

	byID := make(map[string]Product, len(raw))
	ordered := make([]Product, 0, len(raw))
	for _, p := range raw {
		if p.ID == "" {
			return nil, errors.New("product with empty id in catalog")
		}
		if p.Price.IsNegative() {
			return nil, errors.Errorf("product %s has negative price", p.ID)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, errors.Errorf("duplicate product id %s in catalog", p.ID)
		}
		rec := Product{
			ID:        p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Category:  p.Category,
		}
		byID[p.ID] = rec
		ordered = append(ordered, rec)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	return &StaticRepository{byID: byID, ordered: ordered}, nil
}

// NewEmbeddedRepository builds a StaticRepository from the catalog JSON
// compiled into the binary.
func NewEmbeddedRepository() (*StaticRepository, error) {
	return NewStaticRepository(db.Products)
}

// List returns all products ordered by ID.
func (r *StaticRepository) List(_ context.Context) ([]Product, error) {
	out := make([]Product, len(r.ordered))
	copy(out, r.ordered)
	return out, nil
}

// GetByID returns a single product by its identifier.
func (r *StaticRepository) GetByID(_ context.Context, id string) (*Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}
