package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/boutiq-shop/checkout-service/internal/apperrors"
	"github.com/boutiq-shop/checkout-service/internal/config"
	"github.com/boutiq-shop/checkout-service/internal/models"
)

// CardDetails is the full card payload sent to the gateway. It is never
// persisted; only the masked summary from the response is.
type CardDetails struct {
	Name            string `json:"name"`
	Number          string `json:"number"`
	ExpirationYear  int    `json:"expiration_year"`
	ExpirationMonth int    `json:"expiration_month"`
	CVV             string `json:"cvv"`
}

// ChargeRequest is the normalized gateway charge request. AmountCharged
// is in integer minor units (cents).
type ChargeRequest struct {
	CreditCard    CardDetails `json:"credit_card"`
	AmountCharged int64       `json:"amount_charged"`
}

// GatewaySuccess is the gateway's accepted-charge body.
type GatewaySuccess struct {
	CreditCard  models.CreditCardSummary `json:"credit_card"`
	Transaction models.Transaction       `json:"transaction"`
}

// GatewayDecline is a structured decline from the gateway, normalized
// into the local error vocabulary (codes use hyphens, not underscores).
type GatewayDecline struct {
	Domain string
	Code   string
	Name   string
}

// ChargeOutcome is the typed result of a charge attempt: exactly one of
// Success or Decline is set when the returned error is nil.
type ChargeOutcome struct {
	Success *GatewaySuccess
	Decline *GatewayDecline
}

// PaymentGateway charges a card through the remote payment service.
type PaymentGateway interface {
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeOutcome, error)
}

// HTTPPaymentGateway implements PaymentGateway over HTTP. The client
// timeout bounds the whole attempt; a timeout surfaces immediately as
// service-unavailable and is never retried here.
type HTTPPaymentGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPPaymentGateway(cfg config.GatewayConfig, logger *slog.Logger) *HTTPPaymentGateway {
	return &HTTPPaymentGateway{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type gatewayErrorBody struct {
	Errors map[string]struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"errors"`
}

func (g *HTTPPaymentGateway) Charge(ctx context.Context, req *ChargeRequest) (*ChargeOutcome, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	url := g.baseURL + "/pay"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		g.logger.Error("Gateway unreachable", "amount_charged", req.AmountCharged, "error", err)
		return nil, apperrors.GatewayUnavailable()
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var success GatewaySuccess
		if err := json.NewDecoder(resp.Body).Decode(&success); err != nil {
			g.logger.Error("Gateway returned malformed success body", "error", err)
			return nil, apperrors.GatewayError()
		}
		g.logger.Info("Charge accepted",
			"transaction_id", success.Transaction.ID,
			"amount_charged", success.Transaction.AmountCharged,
		)
		return &ChargeOutcome{Success: &success}, nil

	case http.StatusUnprocessableEntity:
		var errBody gatewayErrorBody
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil || len(errBody.Errors) == 0 {
			g.logger.Error("Gateway returned malformed decline body", "error", err)
			return nil, apperrors.GatewayError()
		}
		decline := normalizeDecline(errBody)
		g.logger.Info("Charge declined", "domain", decline.Domain, "code", decline.Code)
		return &ChargeOutcome{Decline: decline}, nil

	default:
		g.logger.Error("Gateway returned unexpected status", "status", resp.StatusCode)
		return nil, apperrors.GatewayError()
	}
}

// normalizeDecline maps the gateway's error body into the local
// vocabulary. Gateways have been observed using underscored codes
// (card_declined); the API contract uses hyphens.
func normalizeDecline(body gatewayErrorBody) *GatewayDecline {
	for domain, e := range body.Errors {
		return &GatewayDecline{
			Domain: domain,
			Code:   strings.ReplaceAll(e.Code, "_", "-"),
			Name:   e.Name,
		}
	}
	return nil
}

// MockPaymentGateway is an in-memory PaymentGateway for tests. It
// records every request so call-count invariants can be asserted.
type MockPaymentGateway struct {
	Outcome  *ChargeOutcome
	Err      error
	Requests []*ChargeRequest
}

func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{
		Outcome: &ChargeOutcome{
			Success: &GatewaySuccess{
				CreditCard: models.CreditCardSummary{
					Name:            "John Doe",
					FirstDigits:     "4242",
					LastDigits:      "4242",
					ExpirationYear:  2030,
					ExpirationMonth: 9,
				},
				Transaction: models.Transaction{
					ID:            "txn_mock_1",
					Success:       true,
					AmountCharged: 0,
				},
			},
		},
	}
}

func (m *MockPaymentGateway) Charge(ctx context.Context, req *ChargeRequest) (*ChargeOutcome, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Outcome.Success != nil && m.Outcome.Success.Transaction.AmountCharged == 0 {
		m.Outcome.Success.Transaction.AmountCharged = req.AmountCharged
	}
	return m.Outcome, nil
}

// Calls returns how many charge attempts reached the gateway.
func (m *MockPaymentGateway) Calls() int {
	return len(m.Requests)
}
