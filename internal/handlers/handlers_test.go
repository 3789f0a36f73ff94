package handlers_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/boutiq-shop/checkout-service/internal/clients"
	"github.com/boutiq-shop/checkout-service/internal/config"
	"github.com/boutiq-shop/checkout-service/internal/events"
	"github.com/boutiq-shop/checkout-service/internal/handlers"
	"github.com/boutiq-shop/checkout-service/internal/metrics"
	"github.com/boutiq-shop/checkout-service/internal/models"
	"github.com/boutiq-shop/checkout-service/internal/repository"
	"github.com/boutiq-shop/checkout-service/internal/server"
	"github.com/boutiq-shop/checkout-service/internal/service"
)

func newTestRouter(t *testing.T) (http.Handler, *clients.MockPaymentGateway) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := repository.NewMemoryProductRepository()
	err := products.ReplaceAll(context.Background(), []models.Product{
		{
			ID:          1,
			Name:        "Brown eggs",
			Description: "Raw organic brown eggs",
			Price:       decimal.NewFromFloat(28.1),
			InStock:     true,
			Weight:      400,
		},
		{
			ID:          2,
			Name:        "Sweet fresh strawberry",
			Description: "Sweet fresh strawberry on the wooden table",
			Price:       decimal.NewFromFloat(29.45),
			InStock:     false,
			Weight:      299,
		},
	})
	if err != nil {
		t.Fatalf("Failed to seed products: %v", err)
	}

	gateway := clients.NewMockPaymentGateway()

	svc := service.NewOrderService(
		products,
		repository.NewMemoryOrderRepository(),
		nil,
		gateway,
		events.NewMockEventPublisher(),
		metrics.New(prometheus.NewRegistry()),
		config.FeatureFlags{},
		slog.Default(),
	)

	cfg := &config.Config{}
	h := handlers.NewHandlers(svc, cfg, slog.Default())
	return server.New(h, cfg).Router(), gateway
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response %q: %v", w.Body.String(), err)
	}
	return resp
}

func assertDomainError(t *testing.T, w *httptest.ResponseRecorder, status int, domain, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("Expected status %d, got %d (%s)", status, w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	errs, ok := resp["errors"].(map[string]any)
	if !ok {
		t.Fatalf("Expected errors object, got %v", resp)
	}
	detail, ok := errs[domain].(map[string]any)
	if !ok {
		t.Fatalf("Expected %s error, got %v", domain, errs)
	}
	if detail["code"] != code {
		t.Errorf("Expected code %s, got %v", code, detail["code"])
	}
	if name, _ := detail["name"].(string); name == "" {
		t.Error("Expected a human-readable error name")
	}
}

const customerBody = `{
	"order": {
		"email": "jane@example.com",
		"shipping_information": {
			"country": "Canada",
			"address": "201, rue de la Gare",
			"postal_code": "G7H 0S3",
			"city": "Chicoutimi",
			"province": "QC"
		}
	}
}`

const cardBody = `{
	"credit_card": {
		"name": "Jane Doe",
		"number": "4242 4242 4242 4242",
		"expiration_year": 2030,
		"expiration_month": 9,
		"cvv": "123"
	}
}`

func createOrder(t *testing.T, router http.Handler) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/order", `{"product": {"id": 1, "quantity": 2}}`)
	if w.Code != http.StatusFound {
		t.Fatalf("Expected 302, got %d (%s)", w.Code, w.Body.String())
	}
	location := w.Header().Get("Location")
	if !strings.HasPrefix(location, "/order/") {
		t.Fatalf("Expected /order/<id> location, got %q", location)
	}
	return location
}

func TestListProducts(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	resp := decodeBody(t, w)
	products, ok := resp["products"].([]any)
	if !ok || len(products) != 2 {
		t.Fatalf("Expected 2 products, got %v", resp)
	}

	first, _ := products[0].(map[string]any)
	for _, field := range []string{"id", "name", "description", "price", "in_stock", "weight", "image"} {
		if _, ok := first[field]; !ok {
			t.Errorf("Product missing field %q: %v", field, first)
		}
	}
}

func TestCreateOrder_RedirectsToOrder(t *testing.T) {
	router, _ := newTestRouter(t)

	location := createOrder(t, router)

	w := doJSON(t, router, http.MethodGet, location, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	resp := decodeBody(t, w)
	order, ok := resp["order"].(map[string]any)
	if !ok {
		t.Fatalf("Expected order wrapper, got %v", resp)
	}

	if order["total_price"] != 56.2 {
		t.Errorf("Expected total_price 56.2, got %v", order["total_price"])
	}
	if order["paid"] != false {
		t.Errorf("Expected paid false, got %v", order["paid"])
	}
	if order["email"] != nil {
		t.Errorf("Expected null email, got %v", order["email"])
	}

	// Untouched phases render as empty objects, not null.
	for _, field := range []string{"shipping_information", "credit_card", "transaction"} {
		block, ok := order[field].(map[string]any)
		if !ok || len(block) != 0 {
			t.Errorf("Expected %s to be {}, got %v", field, order[field])
		}
	}

	product, _ := order["product"].(map[string]any)
	if product["id"] != float64(1) || product["quantity"] != float64(2) {
		t.Errorf("Unexpected product ref: %v", product)
	}
}

func TestCreateOrder_Rejections(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name   string
		body   string
		domain string
		code   string
	}{
		{"empty body", ``, "product", "missing-fields"},
		{"no product", `{}`, "product", "missing-fields"},
		{"zero quantity", `{"product": {"id": 1, "quantity": 0}}`, "product", "missing-fields"},
		{"unknown product", `{"product": {"id": 99, "quantity": 1}}`, "product", "out-of-inventory"},
		{"out of stock", `{"product": {"id": 2, "quantity": 1}}`, "product", "out-of-inventory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/order", tt.body)
			assertDomainError(t, w, http.StatusUnprocessableEntity, tt.domain, tt.code)
		})
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/order/4242", "")
	assertDomainError(t, w, http.StatusNotFound, "order", "not-found")

	w = doJSON(t, router, http.MethodGet, "/order/not-a-number", "")
	assertDomainError(t, w, http.StatusNotFound, "order", "not-found")
}

func TestUpdateOrder_CustomerInfo(t *testing.T) {
	router, _ := newTestRouter(t)
	location := createOrder(t, router)

	w := doJSON(t, router, http.MethodPut, location, customerBody)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	resp := decodeBody(t, w)
	order, _ := resp["order"].(map[string]any)

	if order["email"] != "jane@example.com" {
		t.Errorf("Expected email set, got %v", order["email"])
	}
	shipping, ok := order["shipping_information"].(map[string]any)
	if !ok || shipping["province"] != "QC" {
		t.Errorf("Expected shipping info with province QC, got %v", order["shipping_information"])
	}
	// (56.2 + 10) * 1.15 = 76.13
	if order["shipping_price"] != float64(10) {
		t.Errorf("Expected shipping_price 10, got %v", order["shipping_price"])
	}
	if order["total_price_tax"] != 76.13 {
		t.Errorf("Expected total_price_tax 76.13, got %v", order["total_price_tax"])
	}
}

func TestUpdateOrder_MissingFields(t *testing.T) {
	router, _ := newTestRouter(t)
	location := createOrder(t, router)

	body := `{"order": {"email": "jane@example.com"}}`
	w := doJSON(t, router, http.MethodPut, location, body)
	assertDomainError(t, w, http.StatusUnprocessableEntity, "order", "missing-fields")
}

func TestUpdateOrder_Payment(t *testing.T) {
	router, gateway := newTestRouter(t)
	location := createOrder(t, router)

	if w := doJSON(t, router, http.MethodPut, location, customerBody); w.Code != http.StatusOK {
		t.Fatalf("Customer info update failed: %d", w.Code)
	}

	w := doJSON(t, router, http.MethodPut, location, cardBody)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	resp := decodeBody(t, w)
	order, _ := resp["order"].(map[string]any)

	if order["paid"] != true {
		t.Errorf("Expected paid true, got %v", order["paid"])
	}
	card, ok := order["credit_card"].(map[string]any)
	if !ok || card["first_digits"] != "4242" {
		t.Errorf("Expected masked credit card, got %v", order["credit_card"])
	}
	if _, hasNumber := card["number"]; hasNumber {
		t.Error("Full card number must never appear in responses")
	}
	transaction, ok := order["transaction"].(map[string]any)
	if !ok || transaction["success"] != true {
		t.Errorf("Expected successful transaction, got %v", order["transaction"])
	}
	// 76.13 in cents.
	if transaction["amount_charged"] != float64(7613) {
		t.Errorf("Expected amount_charged 7613, got %v", transaction["amount_charged"])
	}

	// Second attempt fails without reaching the gateway again.
	w = doJSON(t, router, http.MethodPut, location, cardBody)
	assertDomainError(t, w, http.StatusUnprocessableEntity, "order", "already-paid")
	if gateway.Calls() != 1 {
		t.Errorf("Expected one gateway call, got %d", gateway.Calls())
	}
}

func TestUpdateOrder_PaymentBeforeCustomerInfo(t *testing.T) {
	router, gateway := newTestRouter(t)
	location := createOrder(t, router)

	w := doJSON(t, router, http.MethodPut, location, cardBody)
	assertDomainError(t, w, http.StatusUnprocessableEntity, "order", "missing-fields")
	if gateway.Calls() != 0 {
		t.Errorf("Gateway must not be contacted, got %d calls", gateway.Calls())
	}
}

func TestUpdateOrder_Decline(t *testing.T) {
	router, gateway := newTestRouter(t)
	gateway.Outcome = &clients.ChargeOutcome{
		Decline: &clients.GatewayDecline{
			Domain: "credit_card",
			Code:   "card-declined",
			Name:   "The credit card has been declined",
		},
	}

	location := createOrder(t, router)
	if w := doJSON(t, router, http.MethodPut, location, customerBody); w.Code != http.StatusOK {
		t.Fatalf("Customer info update failed: %d", w.Code)
	}

	w := doJSON(t, router, http.MethodPut, location, cardBody)
	assertDomainError(t, w, http.StatusUnprocessableEntity, "credit_card", "card-declined")
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/health", "/ready", "/live"} {
		w := doJSON(t, router, http.MethodGet, path, "")
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200 from %s, got %d", path, w.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 from /metrics, got %d", w.Code)
	}
}
