// Package handler exposes the quoting engine over HTTP. Endpoints follow the
// public contract: POST /v1/orders/quote, POST /v1/orders (finalize) and
// GET /v1/products, with JSON error payloads mapped from the domain errors.
package handler

import (
	"net/http"

	"github.com/tapiocalabs/quotation-api/internal/catalog"
	"github.com/tapiocalabs/quotation-api/internal/order"
)

// Handler serves the order quotation API, delegating business logic to the
// order service and the catalog repository.
type Handler struct {
	products catalog.Repository
	orders   *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(products catalog.Repository, orders *order.Service) *Handler {
	return &Handler{
		products: products,
		orders:   orders,
	}
}

// Register mounts all API routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/orders/quote", h.CreateQuote)
	mux.HandleFunc("POST /v1/orders", h.FinalizeOrder)
	mux.HandleFunc("GET /v1/products", h.ListProducts)
}
