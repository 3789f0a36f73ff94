package clients

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boutiq-shop/checkout-service/internal/apperrors"
	"github.com/boutiq-shop/checkout-service/internal/config"
)

func newGateway(t *testing.T, handler http.HandlerFunc, timeout time.Duration) (*HTTPPaymentGateway, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gateway := NewHTTPPaymentGateway(config.GatewayConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: timeout,
	}, slog.Default())
	return gateway, server
}

func chargeRequest() *ChargeRequest {
	return &ChargeRequest{
		CreditCard: CardDetails{
			Name:            "Jane Doe",
			Number:          "4242424242424242",
			ExpirationYear:  2030,
			ExpirationMonth: 9,
			CVV:             "123",
		},
		AmountCharged: 7613,
	}
}

func TestCharge_Success(t *testing.T) {
	gateway, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pay" {
			t.Errorf("Expected POST /pay, got %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Expected bearer auth, got %q", auth)
		}

		var req ChargeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.AmountCharged != 7613 {
			t.Errorf("Expected amount 7613, got %d", req.AmountCharged)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"credit_card": {
				"name": "Jane Doe",
				"first_digits": "4242",
				"last_digits": "4242",
				"expiration_year": 2030,
				"expiration_month": 9
			},
			"transaction": {
				"id": "wgEQ4zAUdrqpr",
				"success": true,
				"amount_charged": 7613
			}
		}`))
	}, 5*time.Second)

	outcome, err := gateway.Charge(context.Background(), chargeRequest())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if outcome.Success == nil || outcome.Decline != nil {
		t.Fatalf("Expected success outcome, got %+v", outcome)
	}
	if outcome.Success.Transaction.ID != "wgEQ4zAUdrqpr" {
		t.Errorf("Unexpected transaction id: %s", outcome.Success.Transaction.ID)
	}
	if outcome.Success.CreditCard.FirstDigits != "4242" {
		t.Errorf("Unexpected masked card: %+v", outcome.Success.CreditCard)
	}
}

func TestCharge_DeclineNormalizesCode(t *testing.T) {
	gateway, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{
			"errors": {
				"credit_card": {
					"code": "card_declined",
					"name": "The credit card has been declined"
				}
			}
		}`))
	}, 5*time.Second)

	outcome, err := gateway.Charge(context.Background(), chargeRequest())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if outcome.Decline == nil {
		t.Fatalf("Expected decline outcome, got %+v", outcome)
	}
	if outcome.Decline.Code != "card-declined" {
		t.Errorf("Expected hyphenated code, got %q", outcome.Decline.Code)
	}
	if outcome.Decline.Domain != "credit_card" {
		t.Errorf("Expected credit_card domain, got %q", outcome.Decline.Domain)
	}
}

func TestCharge_ServerError(t *testing.T) {
	gateway, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, 5*time.Second)

	_, err := gateway.Charge(context.Background(), chargeRequest())
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Code != apperrors.CodeServiceError {
		t.Fatalf("Expected service-error, got %v", err)
	}
}

func TestCharge_MalformedSuccessBody(t *testing.T) {
	gateway, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}, 5*time.Second)

	_, err := gateway.Charge(context.Background(), chargeRequest())
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Code != apperrors.CodeServiceError {
		t.Fatalf("Expected service-error, got %v", err)
	}
}

func TestCharge_Timeout(t *testing.T) {
	gateway, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}, 50*time.Millisecond)

	_, err := gateway.Charge(context.Background(), chargeRequest())
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Code != apperrors.CodeServiceUnavailable {
		t.Fatalf("Expected service-unavailable, got %v", err)
	}
}

func TestCharge_Unreachable(t *testing.T) {
	gateway, server := newGateway(t, func(w http.ResponseWriter, r *http.Request) {}, time.Second)
	server.Close()

	_, err := gateway.Charge(context.Background(), chargeRequest())
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Code != apperrors.CodeServiceUnavailable {
		t.Fatalf("Expected service-unavailable, got %v", err)
	}
}
