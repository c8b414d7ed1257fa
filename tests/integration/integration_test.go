//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tapiocalabs/quotation-api/internal/catalog"
	"github.com/tapiocalabs/quotation-api/internal/handler"
	"github.com/tapiocalabs/quotation-api/internal/order"
	"github.com/tapiocalabs/quotation-api/internal/pricing"
	"github.com/tapiocalabs/quotation-api/internal/quote"
	"github.com/tapiocalabs/quotation-api/pkg/health"
	"github.com/tapiocalabs/quotation-api/pkg/httpmiddleware"
)

var (
	baseURL    string
	httpClient *http.Client
)

// Response types are defined locally so assertions stay black-box: they only
// know the wire format, not the server's internal types.

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type productResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

type errorResponse struct {
	Status   string         `json:"status"`
	Message  string         `json:"message"`
	NewQuote *quoteResponse `json:"newQuote"`
}

type quoteRequest struct {
	Items []quoteItemRequest `json:"items"`
}

type quoteItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type finalizeRequest struct {
	IdempotencyKey string `json:"idempotencyKey"`
}

type quoteResponse struct {
	IdempotencyKey string             `json:"idempotencyKey"`
	ExpiresAt      string             `json:"expiresAt"`
	Currency       string             `json:"currency"`
	Items          []itemResponse     `json:"items"`
	Discounts      []discountResponse `json:"discounts"`
	Total          float64            `json:"total"`
}

type itemResponse struct {
	ProductID     string             `json:"productId"`
	UnitPrice     float64            `json:"unitPrice"`
	Quantity      int                `json:"quantity"`
	Subtotal      float64            `json:"subtotal"`
	ItemDiscounts []discountResponse `json:"itemDiscounts"`
	Total         float64            `json:"total"`
}

type discountResponse struct {
	Code     string         `json:"code"`
	Name     string         `json:"name"`
	Basis    float64        `json:"basis"`
	Amount   float64        `json:"amount"`
	Metadata map[string]any `json:"metadata"`
}

type finalizeResponse struct {
	Message string        `json:"message"`
	OrderID string        `json:"orderId"`
	Order   quoteResponse `json:"order"`
}

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

// testMain assembles the full server stack in-process, with the embedded
// catalog standing in for PostgreSQL, and serves it over httptest.
func testMain(m *testing.M) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	products, err := catalog.NewEmbeddedRepository()
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)
	defer healthSvc.Stop()

	orderService := order.NewService(
		pricing.NewPricer(products),
		pricing.NewEngine(nil),
		quote.NewMemStore(),
		15*time.Minute,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	handler.NewHandler(products, orderService).Register(mux)

	srv := httptest.NewServer(httpmiddleware.Wrap(mux,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{MaxAge: 86400}),
		httpmiddleware.RateLimit(httpmiddleware.RateLimitConfig{
			Max:    10000,
			Window: time.Minute,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zap.NewNop()),
		httpmiddleware.LogRequests(),
	))
	defer srv.Close()

	baseURL = srv.URL
	httpClient = srv.Client()
	log.Printf("API available at %s", baseURL)

	return m.Run()
}

// HTTP helpers.

func doGet(t *testing.T, path string) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, baseURL+path, nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}

	return resp
}

func doPost(t *testing.T, path string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, baseURL+path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}

	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	return v
}
