package service

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/boutiq-shop/checkout-service/internal/apperrors"
	"github.com/boutiq-shop/checkout-service/internal/clients"
	"github.com/boutiq-shop/checkout-service/internal/models"
)

// CustomerInfoUpdate is a validated customer-info request. Values are
// trimmed.
type CustomerInfoUpdate struct {
	Email    string
	Shipping models.ShippingInformation
}

// PaymentUpdate is a validated payment request.
type PaymentUpdate struct {
	Card clients.CardDetails
}

// SplitUpdateRequest decides which of the two order mutations a PUT
// body requests. A request is either a customer-info update or a
// payment attempt, never both and never neither; ambiguous payloads are
// rejected wholesale. Exactly one of the returned payloads is non-nil
// on success; deep validation of the chosen payload happens later, after
// the order's state checks have passed.
func SplitUpdateRequest(body []byte) (orderRaw, cardRaw json.RawMessage, err error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, nil, apperrors.OrderMissingFields()
	}

	orderRaw, hasOrder := top["order"]
	cardRaw, hasCard := top["credit_card"]

	if hasOrder == hasCard || len(top) != 1 {
		return nil, nil, apperrors.OrderMissingFields()
	}

	if hasOrder {
		return orderRaw, nil, nil
	}
	return nil, cardRaw, nil
}

var shippingFieldNames = []string{"country", "address", "postal_code", "city", "province"}

// ParseCustomerInfo enforces the exact request shape: the order object
// carries exactly {email, shipping_information}, and the shipping block
// carries exactly the five address fields, all non-empty after trim.
func ParseCustomerInfo(raw json.RawMessage) (*CustomerInfoUpdate, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, apperrors.OrderMissingFields()
	}

	emailRaw, hasEmail := fields["email"]
	shippingRaw, hasShipping := fields["shipping_information"]
	if !hasEmail || !hasShipping || len(fields) != 2 {
		return nil, apperrors.OrderMissingFields()
	}

	email, ok := stringField(emailRaw)
	if !ok || email == "" {
		return nil, apperrors.OrderMissingFields()
	}

	var shippingFields map[string]json.RawMessage
	if err := json.Unmarshal(shippingRaw, &shippingFields); err != nil {
		return nil, apperrors.OrderMissingFields()
	}
	if len(shippingFields) != len(shippingFieldNames) {
		return nil, apperrors.OrderMissingFields()
	}

	values := make(map[string]string, len(shippingFieldNames))
	for _, name := range shippingFieldNames {
		raw, ok := shippingFields[name]
		if !ok {
			return nil, apperrors.OrderMissingFields()
		}
		value, ok := stringField(raw)
		if !ok || value == "" {
			return nil, apperrors.OrderMissingFields()
		}
		values[name] = value
	}

	return &CustomerInfoUpdate{
		Email: email,
		Shipping: models.ShippingInformation{
			Country:    values["country"],
			Address:    values["address"],
			PostalCode: values["postal_code"],
			City:       values["city"],
			Province:   values["province"],
		},
	}, nil
}

var cardFieldNames = []string{"name", "number", "expiration_year", "expiration_month", "cvv"}

// ParseCreditCard validates the card payload. Checks run in a fixed
// order and the first failure wins: format, fields, name, number,
// expiration year, expiration month, cvv.
func ParseCreditCard(raw json.RawMessage) (*PaymentUpdate, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, apperrors.CreditCard(apperrors.CodeInvalidFormat, "The credit card payload is malformed")
	}

	if len(fields) != len(cardFieldNames) {
		return nil, apperrors.CreditCard(apperrors.CodeMissingFields, "Some credit card fields are missing")
	}
	for _, name := range cardFieldNames {
		if _, ok := fields[name]; !ok {
			return nil, apperrors.CreditCard(apperrors.CodeMissingFields, "Some credit card fields are missing")
		}
	}

	name, ok := stringField(fields["name"])
	if !ok || name == "" {
		return nil, apperrors.CreditCard(apperrors.CodeInvalidName, "The cardholder name is invalid")
	}

	number, ok := stringField(fields["number"])
	// Spaces are stripped for transmission; the number is not otherwise
	// validated here (the gateway owns that).
	number = strings.ReplaceAll(number, " ", "")
	if !ok || number == "" {
		return nil, apperrors.CreditCard(apperrors.CodeInvalidNumber, "The credit card number is invalid")
	}

	year, ok := intField(fields["expiration_year"])
	if !ok {
		return nil, apperrors.CreditCard(apperrors.CodeInvalidExpiration, "The expiration year is invalid")
	}

	month, ok := intField(fields["expiration_month"])
	if !ok || month < 1 || month > 12 {
		return nil, apperrors.CreditCard(apperrors.CodeInvalidExpiration, "The expiration month is invalid")
	}

	cvv, ok := stringField(fields["cvv"])
	if !ok || !isThreeDigits(cvv) {
		return nil, apperrors.CreditCard(apperrors.CodeInvalidCVV, "The CVV must be exactly three digits")
	}

	return &PaymentUpdate{
		Card: clients.CardDetails{
			Name:            name,
			Number:          number,
			ExpirationYear:  year,
			ExpirationMonth: month,
			CVV:             cvv,
		},
	}, nil
}

func stringField(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// intField accepts a JSON integer or a string holding one.
func intField(raw json.RawMessage) (int, bool) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

func isThreeDigits(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
